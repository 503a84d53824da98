package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// readCSV auto-detects the encoding and converts to UTF-8. Quote sheets
// saved from Chinese Excel installs are commonly GBK/GB18030.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "gbk", "gb2312", "gb-2312":
		dec = transform.NewReader(br, simplifiedchinese.GBK.NewDecoder())
	case "gb18030", "gb-18030":
		dec = transform.NewReader(br, simplifiedchinese.GB18030.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, v := range rec {
			rec[i] = normalizeCell(v)
		}
		rows = append(rows, rec)
	}
	return trimTrailingEmptyRows(rows), nil
}
