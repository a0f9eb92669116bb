package user

import (
	"fmt"
	"regexp"
	"strconv"
)

var folioRe = regexp.MustCompile(`^EST(\d+)$`)

// NextFolio derives the next student folio from the highest one assigned
// so far. The sequence starts at EST001 and keeps growing past EST999
// since %03d only pads, never truncates.
func NextFolio(last string) string {
	n := 1
	if m := folioRe.FindStringSubmatch(last); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v + 1
		}
	}

	return fmt.Sprintf("EST%03d", n)
}
