package pdf

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateResume(ctx context.Context, content portfoliodomain.Content) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, content.DisplayName(), props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	if content.Headline != "" {
		m.AddRow(8,
			text.NewCol(12, content.Headline, props.Text{
				Size: 11,
			}),
		)
	}

	// Contact line
	m.AddRow(14,
		col.New(6).Add(
			text.New(content.Email, props.Text{Size: 9, Top: 0}),
		),
		col.New(6).Add(
			linkLines(content.Links)...,
		),
	)

	if content.About != "" {
		sectionTitle(m, "About")
		m.AddRow(20,
			text.NewCol(12, content.About, props.Text{Size: 9}),
		)
	}

	if len(content.Skills) > 0 {
		sectionTitle(m, "Skills")
		m.AddRow(10,
			text.NewCol(12, strings.Join(content.Skills, " · "), props.Text{Size: 9}),
		)
	}

	if len(content.Experience) > 0 {
		sectionTitle(m, "Experience")
		for _, exp := range content.Experience {
			m.AddRow(8,
				text.NewCol(8, exp.Role+" — "+exp.Company, props.Text{Style: fontstyle.Bold, Size: 10}),
				text.NewCol(4, dateRange(exp.Start, exp.End), props.Text{Size: 9, Align: align.Right}),
			)
			if exp.Summary != "" {
				m.AddRow(10,
					text.NewCol(12, exp.Summary, props.Text{Size: 9}),
				)
			}
		}
	}

	if len(content.Projects) > 0 {
		sectionTitle(m, "Projects")
		for _, project := range content.Projects {
			m.AddRow(8,
				text.NewCol(8, project.Name, props.Text{Style: fontstyle.Bold, Size: 10}),
				text.NewCol(4, project.URL, props.Text{Size: 8, Align: align.Right}),
			)
			if project.Description != "" {
				m.AddRow(10,
					text.NewCol(12, project.Description, props.Text{Size: 9}),
				)
			}
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func sectionTitle(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Top:   3,
		}),
	)
}

func linkLines(links []portfoliodomain.Link) []core.Component {
	lines := make([]core.Component, 0, len(links))
	top := 0.0
	for _, link := range links {
		label := link.URL
		if link.Label != "" {
			label = link.Label + ": " + link.URL
		}
		lines = append(lines, text.New(label, props.Text{Size: 8, Top: top, Align: align.Right}))
		top += 4
	}
	return lines
}

func dateRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	if end == "" {
		end = "Present"
	}
	return start + " – " + end
}
