package types

import "fmt"

// Resolution is one target size and the prefix its derivatives are written under.
type Resolution struct {
	Width             int    `yaml:"width" json:"width"`
	Height            int    `yaml:"height" json:"height"`
	DestinationPrefix string `yaml:"destinationPrefix" json:"destinationPrefix"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
