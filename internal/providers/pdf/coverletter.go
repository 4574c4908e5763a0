package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func (p *PDFProvider) GenerateCoverLetter(ctx context.Context, data CoverLetterData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.Content.DisplayName(), props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(14,
		col.New(6).Add(
			text.New(data.Content.Email, props.Text{Size: 9, Top: 0}),
		),
		col.New(6).Add(
			text.New(data.Date, props.Text{Size: 9, Top: 0, Align: align.Right}),
		),
	)

	// Recipient block
	m.AddRow(20,
		col.New(12).Add(
			text.New(data.RecipientName, props.Text{Size: 10, Top: 0}),
			text.New(data.Company, props.Text{Size: 10, Top: 5}),
		),
	)

	greeting := "Dear Hiring Manager,"
	if data.RecipientName != "" {
		greeting = "Dear " + data.RecipientName + ","
	}
	m.AddRow(10,
		text.NewCol(12, greeting, props.Text{Size: 10}),
	)

	if data.Role != "" {
		m.AddRow(12,
			text.NewCol(12, "Re: "+data.Role, props.Text{Size: 10, Style: fontstyle.Bold}),
		)
	}

	m.AddRow(80,
		text.NewCol(12, data.Body, props.Text{Size: 10}),
	)

	m.AddRow(10,
		text.NewCol(12, "Sincerely,", props.Text{Size: 10}),
	)
	m.AddRow(10,
		text.NewCol(12, data.Content.DisplayName(), props.Text{Size: 10, Style: fontstyle.Bold}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
