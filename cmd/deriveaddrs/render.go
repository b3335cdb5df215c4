package main

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/complex-gh/deriveaddrs"
	"github.com/muesli/termenv"
)

const explorerLinkText = "mempool.space"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	indexStyle  = cellStyle.Align(lipgloss.Right)
)

// renderTable draws rows under headers. Columns listed in right are right aligned.
func renderTable(headers []string, rows [][]string, right map[int]bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return indexStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

// renderAddresses draws the address table. With explorer set, a column with
// the explorer link is added; links renders it as a clickable OSC 8 hyperlink
// instead of the raw URL.
func renderAddresses(addrs []deriveaddrs.DerivedAddress, explorer, links bool) string {
	headers := []string{"#", "Address", "Derivation Path"}
	if explorer {
		headers = append(headers, "Explorer")
	}

	rows := make([][]string, 0, len(addrs))
	for i, a := range addrs {
		row := []string{strconv.Itoa(i), a.Address, a.Path.String()}
		if explorer {
			row = append(row, explorerCell(a.ExplorerURL, links))
		}
		rows = append(rows, row)
	}

	return renderTable(headers, rows, map[int]bool{0: true})
}

func explorerCell(url string, links bool) string {
	switch {
	case url == "":
		return ""
	case links:
		return termenv.Hyperlink(url, explorerLinkText)
	default:
		return url
	}
}

func renderParentKeys(p *deriveaddrs.ParentKeyPair) string {
	return renderTable(
		[]string{"Type", "Extended Public Key"},
		[][]string{{"xpub", p.XPub}, {"zpub", p.ZPub}},
		nil,
	)
}
