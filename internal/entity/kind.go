package entity

import "fmt"

// Kind discriminates the three catalog levels. Operations that act on a
// generic catalog entry switch exhaustively over this type.
type Kind int

const (
	KindWorkspace Kind = iota
	KindFolder
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindWorkspace:
		return "workspace"
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
