package claude

// HookOutput represents the structured decision written to stdout
type HookOutput struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}
