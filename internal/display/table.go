package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/gauthierbraillon/folio/internal/portfolio"
)

const titleWidth = 40

// FormatSearchTable writes one page of search results as a table,
// followed by a page footer.
func (f *TerminalFormatter) FormatSearchTable(w io.Writer, page *portfolio.SearchPage) error {
	if page == nil || len(page.Items) == 0 {
		_, err := fmt.Fprint(w, "No portfolios found.\n")
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(page.Items))
	for _, s := range page.Items {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			f.TruncateText(s.Title, titleWidth),
			s.Nickname,
			f.formatSection(s.Category, s.Filter),
			strconv.FormatInt(s.Likes, 10),
		})
	}

	table.Header("id", "title", "author", "section", "likes")
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\npage %d of %d (%d results)\n", page.Page+1, page.TotalPages, page.TotalElements)
	return err
}
