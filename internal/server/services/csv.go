package services

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// CSVRenderer is the built-in renderer. Richer formats plug in through the
// Renderer interface.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv" }
func (CSVRenderer) Extension() string   { return "csv" }

func (CSVRenderer) Render(recs []*models.ContributionWithUsers, totals Totals) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "created_at", "first_name", "last_name", "email",
		"address", "city", "postal_code", "amount", "paid", "user", "agent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range recs {
		row := []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.FirstName,
			r.LastName,
			r.Email,
			r.Address,
			r.City,
			r.PostalCode,
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			strconv.FormatBool(r.Paid),
			r.UserEmail,
			r.AgentEmail,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	total := []string{"", "", "", "", "", "", "", "",
		strconv.FormatFloat(totals.Total, 'f', 2, 64), "", "", ""}
	if err := w.Write(total); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
