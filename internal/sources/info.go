package sources

// Info is an unresolved pointer to candidate audio. It is either a URLInfo
// or a TTSInfo; the unexported method keeps the set closed.
type Info interface {
	isInfo()
	// DisplayName is the optional per-candidate label, "" when absent.
	DisplayName() string
}

// URLInfo points at an audio file.
type URLInfo struct {
	URL  string
	Name string
}

// TTSInfo asks a speech synthesis voice to say Text.
type TTSInfo struct {
	Text  string
	Voice string
}

func (URLInfo) isInfo() {}
func (TTSInfo) isInfo() {}

func (i URLInfo) DisplayName() string { return i.Name }
func (TTSInfo) DisplayName() string   { return "" }
