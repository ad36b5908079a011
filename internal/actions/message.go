package actions

import (
	"fmt"
	"io"
	"os"
)

func printMessage(w io.Writer, msg string) error {
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}
