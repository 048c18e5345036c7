package report

import (
	"encoding/base64"
	"fmt"
	"strings"

	"taskconsole/internal/backend"
	"taskconsole/internal/preview"
)

// Extraction is the outcome of ExtractScreenshots.
type Extraction struct {
	Saved   []string
	Skipped int
}

// ExtractScreenshots writes each case's screenshot to dir as
// TC_<number>_<timestamp>.png. Cases without data, with a truncated
// ("..."-suffixed) payload or with undecodable base64 are skipped.
func ExtractScreenshots(rep backend.TestReport, dir string) (Extraction, error) {
	var res Extraction
	for _, tc := range rep.TestCases {
		data := strings.TrimSpace(tc.Screenshot)
		if data == "" || strings.HasSuffix(data, "...") {
			res.Skipped++
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			res.Skipped++
			continue
		}
		path, err := preview.WriteFile(dir, ScreenshotName(tc), raw)
		if err != nil {
			return res, fmt.Errorf("save screenshot for %s: %w", tc.Number, err)
		}
		res.Saved = append(res.Saved, path)
	}
	return res, nil
}

// ScreenshotName builds the file name for a case's screenshot.
func ScreenshotName(tc backend.TestCase) string {
	number := tc.Number
	if number == "" {
		number = "Unknown"
	}
	number = strings.ReplaceAll(number, ".", "_")
	stamp := strings.NewReplacer(":", "-", " ", "_").Replace(tc.ExecutedAt)
	return fmt.Sprintf("TC_%s_%s.png", safeName(number), safeName(stamp))
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, s)
}
