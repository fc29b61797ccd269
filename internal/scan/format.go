package scan

import "fmt"

var byteUnits = [...]string{"KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count using binary units (powers of 1024):
// B, KB, MB, GB, TB. Values under 1 KB print as an integer byte count;
// everything else is rounded to two decimal places. Values of a petabyte or
// more stay in TB. The output is deterministic for a given input.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	unit := ""
	for _, u := range byteUnits {
		v /= 1024
		unit = u
		if v < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}
