package evaluate

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// FlatRow is one pair flattened for spreadsheets. Similarity columns come
// from the better orientation under the export lambda.
type FlatRow struct {
	Image1PoseAnswer string  `json:"image1_pose_answer"`
	Image1PoseResult string  `json:"image1_pose_result"`
	Image2PoseAnswer string  `json:"image2_pose_answer"`
	Image2PoseResult string  `json:"image2_pose_result"`
	Cosine           float64 `json:"cosine"`
	Euclid           float64 `json:"euclid"`
	Mixed            float64 `json:"mixed"`
	IsSameAnswer     int     `json:"is_same_answer"`
	IsSameResult     int     `json:"is_same_result"`
}

var csvHeader = []string{
	"image1_pose_answer",
	"image1_pose_result",
	"image2_pose_answer",
	"image2_pose_result",
	"cosine",
	"euclid",
	"mixed",
	"is_same_answer",
	"is_same_result",
}

// ToFlatRows flattens pairs. IsSameResult is 1 when both images were
// classified as the same known pose.
func ToFlatRows(pairs []LabeledPair, lambda float64) []FlatRow {
	rows := make([]FlatRow, 0, len(pairs))
	for _, p := range pairs {
		r := p.best(lambda)
		rows = append(rows, FlatRow{
			Image1PoseAnswer: p.Image1.PoseAnswer,
			Image1PoseResult: p.Image1.PoseResult,
			Image2PoseAnswer: p.Image2.PoseAnswer,
			Image2PoseResult: p.Image2.PoseResult,
			Cosine:           r.Cosine,
			Euclid:           r.EuclideanDiff,
			Mixed:            p.Score(lambda),
			IsSameAnswer:     boolInt(p.Same),
			IsSameResult:     boolInt(sameResult(p)),
		})
	}
	return rows
}

func sameResult(p LabeledPair) bool {
	r1, r2 := p.Image1.PoseResult, p.Image2.PoseResult
	return r1 != "" && r1 != "unknown" && r1 == r2
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []FlatRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Image1PoseAnswer,
			r.Image1PoseResult,
			r.Image2PoseAnswer,
			r.Image2PoseResult,
			formatFloat(r.Cosine),
			formatFloat(r.Euclid),
			formatFloat(r.Mixed),
			strconv.Itoa(r.IsSameAnswer),
			strconv.Itoa(r.IsSameResult),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []FlatRow) error {
	if rows == nil {
		rows = []FlatRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
