package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

// =============================================================================
// XML STRUCTURE
// =============================================================================
//
//   <invoice sheet="ТОРГ-12" valid="false">
//     <number>123</number>
//     <date>2017-03-15</date>
//     <priceWithoutTaxSum>250.50</priceWithoutTaxSum>
//     <priceWithTaxSum>291.55</priceWithTaxSum>
//     <errors>
//       <error code="count_rows">...</error>
//     </errors>
//     <rows>
//       <row num="1" valid="true">
//         <code>A-1</code>
//         ...
//       </row>
//     </rows>
//   </invoice>

// XMLOptions contains options for XML generation.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultXMLOptions returns the default generation options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// xmlElement is a generic XML element.
type xmlElement struct {
	Name     string
	Attrs    [][2]string
	Value    string
	Children []xmlElement
}

// WriteXML writes the invoice as XML with default options.
func WriteXML(w io.Writer, inv *torg12.Invoice) error {
	return WriteXMLWithOptions(w, inv, DefaultXMLOptions())
}

// WriteXMLWithOptions writes the invoice as XML.
func WriteXMLWithOptions(w io.Writer, inv *torg12.Invoice, options XMLOptions) error {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	}
	writeElement(&buffer, buildInvoiceElement(NewView(inv)), options.Indent, 0)

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

func buildInvoiceElement(v InvoiceView) xmlElement {
	root := xmlElement{
		Name: "invoice",
		Attrs: [][2]string{
			{"sheet", v.Sheet},
			{"valid", strconv.FormatBool(v.Valid)},
		},
		Children: []xmlElement{
			simpleElement("number", v.Number),
			simpleElement("date", v.Date),
			simpleElement("priceWithoutTaxSum", v.PriceWithoutTaxSum.StringFixed(2)),
			simpleElement("priceWithTaxSum", v.PriceWithTaxSum.StringFixed(2)),
		},
	}
	root.Children = appendIssues(root.Children, "errors", "error", v.Errors)
	root.Children = appendIssues(root.Children, "warnings", "warning", v.Warnings)

	rows := xmlElement{Name: "rows"}
	for _, r := range v.Rows {
		rows.Children = append(rows.Children, buildRowElement(r))
	}
	root.Children = append(root.Children, rows)
	return root
}

func buildRowElement(r RowView) xmlElement {
	element := xmlElement{
		Name: "row",
		Attrs: [][2]string{
			{"num", strconv.Itoa(r.Num)},
			{"valid", strconv.FormatBool(r.Valid)},
		},
		Children: []xmlElement{
			simpleElement("code", r.Code),
			simpleElement("name", r.Name),
			simpleElement("cnt", strconv.Itoa(r.Cnt)),
			simpleElement("priceWithoutTax", r.PriceWithoutTax.String()),
			simpleElement("priceWithTax", r.PriceWithTax.String()),
			simpleElement("taxRate", strconv.Itoa(r.TaxRate)),
		},
	}
	element.Children = appendIssues(element.Children, "errors", "error", r.Errors)
	element.Children = appendIssues(element.Children, "warnings", "warning", r.Warnings)
	return element
}

func appendIssues(children []xmlElement, listName, itemName string, list []Issue) []xmlElement {
	if len(list) == 0 {
		return children
	}
	container := xmlElement{Name: listName}
	for _, issue := range list {
		container.Children = append(container.Children, xmlElement{
			Name:  itemName,
			Attrs: [][2]string{{"code", issue.Code}},
			Value: issue.Message,
		})
	}
	return append(children, container)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// simpleElement creates an element with a text value.
func simpleElement(name, value string) xmlElement {
	return xmlElement{Name: name, Value: value}
}

// writeElement writes an element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element xmlElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.Name)
	for _, attr := range element.Attrs {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr[0], escapeXML(attr[1]))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
