package ui

const (
	IconOK      = "✓"
	IconFail    = "✗"
	IconWarn    = "!"
	IconRunning = "●"
	IconStopped = "○"
	IconArrow   = "›"
	IconDot     = "·"
)
