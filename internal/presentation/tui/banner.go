package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  ___          _      _ ___      _", "#f472b6"},
	{" / __| ___  __(_)__ _| / __|_ __| |_  ___ _ _ ___", "#e879f9"},
	{" \\__ \\/ _ \\/ _| / _` | \\__ \\ '_ \\ ' \\/ -_) '_/ -_)", "#c084fc"},
	{" |___/\\___/\\__|_\\__,_|_|___/ .__/_||_\\___|_| \\___|", "#a78bfa"},
	{"                            |_|            guide", "#818cf8"},
}

// PrintBanner writes the SocialSphere banner, colored for the terminal's profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
