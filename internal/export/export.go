// Package export renders move logs and victory certificates into
// downloadable documents.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"chess-arena/internal/engine"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat resolves a format query value; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", engine.ErrInvalidArgument, s)
	}
}

// ContentType returns the MIME type for a rendered document.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/json"
}

type moveRecord struct {
	Seq     int    `json:"seq"`
	Player  string `json:"player"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Piece   string `json:"piece,omitempty"`
	Effect  string `json:"effect,omitempty"`
	Elapsed string `json:"elapsed"`
}

// MoveLog renders a session's annotated moves in the requested format.
func MoveLog(sessionID string, moves []engine.MoveDetail, f Format) ([]byte, error) {
	records := make([]moveRecord, 0, len(moves))
	for _, m := range moves {
		records = append(records, moveRecord{
			Seq:     m.Seq,
			Player:  m.PlayerName,
			From:    deref(m.FromSquare),
			To:      deref(m.ToSquare),
			Piece:   deref(m.Piece),
			Effect:  m.Effect,
			Elapsed: m.TimeElapsed,
		})
	}

	if f == FormatJSON {
		return json.MarshalIndent(struct {
			SessionID string       `json:"session_id"`
			Moves     []moveRecord `json:"moves"`
		}{sessionID, records}, "", "  ")
	}
	return moveLogPDF(sessionID, records)
}

func moveLogPDF(sessionID string, records []moveRecord) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Game "+sessionID, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{12, 35, 16, 16, 38, 30, 28}
	headers := []string{"#", "Player", "From", "To", "Piece", "Effect", "Time"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range records {
		piece, effect := r.Piece, r.Effect
		if piece == "" {
			piece = "-"
		}
		cells := []string{
			fmt.Sprintf("%d", r.Seq), r.Player,
			orDash(r.From), orDash(r.To), piece, orDash(effect), r.Elapsed,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Certificate renders a PDF attesting a party's victory in a finished
// session.
func Certificate(cert *engine.Certificate) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 28)
	pdf.Ln(30)
	pdf.CellFormat(0, 14, "Certificate of Victory", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, "This certifies that", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, cert.WinnerName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("won a game of chess against %s in %d moves.", cert.Opponent, cert.MoveCount), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 12)
	when := cert.StartedAt
	if cert.EndedAt != nil {
		when = *cert.EndedAt
	}
	pdf.CellFormat(0, 8, when.Format("January 2, 2006 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "Game "+cert.SessionID, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
