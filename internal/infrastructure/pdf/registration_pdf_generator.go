// Package pdf genera el resumen imprimible de una solicitud de registro de establecimiento.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título del portal   │  ID de solicitud + fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE: nombre completo / email / estado               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Nombre del negocio | N° certificado DTI          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + leyenda                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/pkg/names"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 190, Green: 30, Blue: 45}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ ports.RegistrationPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa ports.RegistrationPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	title string
}

// NewMarotoPDFGenerator construye el generador. title encabeza cada página.
func NewMarotoPDFGenerator(title string) *MarotoPDFGenerator {
	if title == "" {
		title = "FSIC Establishment Registration"
	}
	return &MarotoPDFGenerator{title: title}
}

// GenerateRegistrationPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateRegistrationPDF(
	_ context.Context,
	reg *entity.PendingRegistration,
	businesses []*entity.PendingBusiness,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(reg))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(applicantRow(reg))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(businessRows(businesses)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(reg))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(reg *entity.PendingRegistration) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Registration summary", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("REGISTRATION ID", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(reg.ID, props.Text{Size: 7, Align: align.Right, Top: 7}),
			text.New("Submitted: "+reg.CreatedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func applicantRow(reg *entity.PendingRegistration) core.Row {
	return row.New(18).Add(
		col.New(12).Add(
			text.New("APPLICANT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(names.Display(reg.FirstName, reg.MiddleName, reg.LastName), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Status: %s", reg.Email, strings.ToUpper(reg.Status)),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Business name", 7, align.Left),
		h("DTI certificate no.", 4, align.Left),
	)
}

// businessRows: una fila por negocio declarado.
func businessRows(businesses []*entity.PendingBusiness) []core.Row {
	if len(businesses) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("No businesses declared.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	rows := make([]core.Row, 0, len(businesses))
	for i, b := range businesses {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(7).Add(text.New(b.BusinessName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(b.DTICertificateNo, props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return rows
}

// footerRow: QR con el ID para ubicar la solicitud desde el panel.
func footerRow(reg *entity.PendingRegistration) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(reg.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Scan to open this registration in the admin portal.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("This summary is not a Fire Safety Inspection Certificate.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}
