package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

func (c *CLI) browseCommand() *cobra.Command {
	var filter fileFilter

	cmd := &cobra.Command{
		Use:   "browse <project>",
		Short: "Pick a distribution file interactively",
		Long: `Show the files of a project in an interactive list. Enter prints the
download URL of the selected file; m prints its core metadata URL.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := c.fetchProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			files := filter.apply(details.Files)
			if len(files) == 0 {
				printWarning("No files match")
				return nil
			}

			p := tea.NewProgram(newFileListModel(string(details.Name), files), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(fileListModel); ok && m.Selected != "" {
				fmt.Fprintln(cmd.OutOrStdout(), m.Selected)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&filter.noYanked, "no-yanked", false, "hide yanked files")
	cmd.Flags().BoolVar(&filter.wheelsOnly, "wheels-only", false, "show only wheels")

	return cmd
}

// =============================================================================
// fileListModel - Interactive file selection
// =============================================================================

// fileListModel is the bubbletea model for interactive file selection.
// Selected holds the printed URL once the user picked a file.
type fileListModel struct {
	Project  string
	Files    []simple.ProjectFile
	Cursor   int
	Offset   int
	Height   int
	Selected string
	Notice   string
}

func newFileListModel(project string, files []simple.ProjectFile) fileListModel {
	return fileListModel{Project: project, Files: files, Height: 15}
}

func (m fileListModel) Init() tea.Cmd {
	return nil
}

func (m fileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Notice = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Files[m.Cursor].URL
			return m, tea.Quit
		case "m":
			u := m.Files[m.Cursor].MetadataURL()
			if u == "" {
				m.Notice = "no separate metadata for this file"
				return m, nil
			}
			m.Selected = u
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

func (m fileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Project))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ download URL  m metadata URL  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Files))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, fileRow(&m.Files[i])...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, fileHeaders...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Files) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle().Foreground(colorGray)
			if m.Files[idx].Yanked.IsYanked() {
				style = style.Foreground(colorDim)
			} else if m.Files[idx].IsWheel() {
				style = style.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				style = style.Bold(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))
	if m.Notice != "" {
		b.WriteString("  " + StyleWarning.Render(m.Notice))
	}

	return b.String()
}
