package collab

import "github.com/atotto/clipboard"

// Paste is the external paste collaborator: insert text into
// the foreground application. The core's contract is "paste(text) on the
// UI thread, preceded by overlay hide" — simulating a paste keystroke is
// an OS-specific concern out of scope here, so ClipboardPaste implements
// the portable half (placing text on the clipboard) and leaves the
// OS-level paste keystroke to whatever desktop-integration layer wraps
// this module.
type Paste interface {
	Paste(text string) error
}

// ClipboardPaste copies text to the system clipboard via atotto/clipboard.
type ClipboardPaste struct{}

func (ClipboardPaste) Paste(text string) error {
	return clipboard.WriteAll(text)
}
