package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const barWidth = 40

// RenderText writes c as terminal output.
func RenderText(w io.Writer, c *Content) error {
	fmt.Fprintf(w, "%s\n%s\n\n", AppTitle, strings.Repeat("=", len(AppTitle)))
	fmt.Fprintf(w, "%s\n\n", c.View.Title())

	switch c.View {
	case ViewDataset:
		t := newTable(w, datasetHeader())
		for _, r := range c.Table.Records {
			t.Append(datasetRow(r))
		}
		t.Render()
		fmt.Fprintf(w, "%d rows\n", c.Table.Len())
	case ViewVisualize:
		fmt.Fprintf(w, "Value counts of %s\n\n", c.Column)
		top := 0
		for _, n := range c.Counts {
			if n.Count > top {
				top = n.Count
			}
		}
		t := newTable(w, []string{c.Column, "Count", ""})
		for _, n := range c.Counts {
			t.Append([]string{n.Label(), fmt.Sprint(n.Count), bar(n.Count, top, barWidth)})
		}
		t.Render()
	case ViewClusters:
		if note := c.Result.Notice(); note != "" {
			fmt.Fprintf(w, "%s\n\n", note)
		}
		fmt.Fprintln(w, "Cluster means")
		t := newTable(w, clusterHeader())
		for _, s := range c.Summaries {
			t.Append(clusterRow(s))
		}
		t.Render()
		fmt.Fprintln(w, "\nConclusion")
		for _, line := range Conclusion(c.Summaries) {
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintln(w, "\nUse `mallseg serve` for the 3D scatter or `mallseg plot` for a PNG.")
	default:
		writePage(w, c.Page)
	}
	return nil
}

func writePage(w io.Writer, p Page) {
	fmt.Fprintf(w, "%s\n\n", p.Heading)
	for _, para := range p.Paragraphs {
		fmt.Fprintf(w, "%s\n\n", para)
	}
	for _, b := range p.Bullets {
		fmt.Fprintf(w, "  - %s\n", b)
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.SetHeader(header)
	return t
}

// RenderMenu lists the views with their keys.
func RenderMenu(w io.Writer) {
	t := newTable(w, []string{"#", "View", "Key"})
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, v := range views {
		t.Append([]string{fmt.Sprint(i + 1), v.Title(), string(v)})
	}
	t.Render()
}
