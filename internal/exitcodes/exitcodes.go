package exitcodes

// Exit codes for the recycle CLI.
// On Windows a failed shell operation exits with the shell's own result code instead of TrashFailed.
const (
	Success         = 0 // Path moved to the trash, or nothing to do
	TrashFailed     = 1 // Trash facility reported a failure (e.g. path not found)
	InvalidConfig   = 2 // Configuration file invalid, or bad command-line usage
	SafetyViolation = 3 // Safety validator blocked the operation
	RuntimeError    = 4 // Runtime error outside the trash facility
)
