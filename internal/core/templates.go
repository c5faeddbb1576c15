package core

// templates.go renders the blank import templates offered for download.

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateColumn documents one column of the import template.
type TemplateColumn struct {
	Name        string
	Description string
	Required    bool
	Example     string
}

// TemplateColumns describes the template in column order.
var TemplateColumns = []TemplateColumn{
	{Name: ColName, Description: "Nombre del producto", Required: true, Example: "Molde de silicón corazón"},
	{Name: ColDescription, Description: "Descripción larga", Example: "Molde para 6 piezas"},
	{Name: ColPrice, Description: "Precio en MXN, mayor a 0", Required: true, Example: "$1,135.00"},
	{Name: ColDepartment, Description: "Departamento del proveedor", Required: true, Example: "Moldes"},
	{Name: ColCategory, Description: "Categoría del proveedor", Required: true, Example: "Silicón"},
	{Name: ColSKU, Description: "Clave única del producto", Required: true, Example: "MOL-0012"},
	{Name: ColBarcode, Description: "Código de barras", Example: "7501234567890"},
	{Name: ColTaxCode, Description: "Clave de producto SAT", Example: "52151500"},
	{Name: ColAvailable, Description: "si/no; vacío cuenta como si", Example: "si"},
	{Name: ColFeatured, Description: "si/no", Example: "no"},
	{Name: ColSeasonal, Description: "si/no", Example: "no"},
}

// WriteCSVTemplate writes the header-only CSV template.
func WriteCSVTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write template header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSXTemplate writes a workbook with a styled header row and an
// instructions sheet listing each column.
func WriteXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("required style: %w", err)
	}

	for i, col := range TemplateColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		header := col.Name
		style := headerStyle
		if col.Required {
			header += " *"
			style = requiredStyle
		}
		if err := f.SetCellValue(productsSheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(productsSheet, cell, cell, style); err != nil {
			return err
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(productsSheet, colName, colName, 20); err != nil {
			return err
		}
	}

	const help = "Instrucciones"
	if _, err := f.NewSheet(help); err != nil {
		return fmt.Errorf("instructions sheet: %w", err)
	}
	for i, h := range []string{"Columna", "Descripción", "Obligatoria", "Ejemplo"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(help, cell, h)
	}
	for i, col := range TemplateColumns {
		row := i + 2
		required := "No"
		if col.Required {
			required = "Sí"
		}
		f.SetCellValue(help, fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue(help, fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue(help, fmt.Sprintf("C%d", row), required)
		f.SetCellValue(help, fmt.Sprintf("D%d", row), col.Example)
	}
	f.SetColWidth(help, "A", "A", 18)
	f.SetColWidth(help, "B", "B", 40)
	f.SetColWidth(help, "D", "D", 30)

	idx, err := f.GetSheetIndex(productsSheet)
	if err == nil {
		f.SetActiveSheet(idx)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
