package copilotcli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type TextInputModel struct {
	m     textinput.Model
	text  string
	width int
}

func GetInput() (r string, err error) {
	var m tea.Model
	if m, err = tea.NewProgram(NewTextInputModel()).Run(); err != nil {
		return
	}
	if m, ok := m.(TextInputModel); ok {
		r = strings.TrimSpace(m.text)
		return
	}
	err = fmt.Errorf("unknown model type")
	return
}

func NewTextInputModel() TextInputModel {
	ti := textinput.New()
	ti.Placeholder = "Ask Copilot anything..."
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 100

	return TextInputModel{m: ti}
}

func (this TextInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (this TextInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		this.width = msg.Width
		if this.width-4 > 0 {
			this.m.Width = this.width - 4 - len(this.m.Prompt)
		}
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			this.text = this.m.Value()
			return this, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			return this, tea.Quit
		}
	}

	this.m, cmd = this.m.Update(msg)
	return this, cmd
}

func (this TextInputModel) View() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6CA0DC")).
		Padding(0, 1).
		Width(this.width-2).
		Render(this.m.View()) + "\n"
}

type SpinnerModel struct {
	m    spinner.Model
	text string
}

func NewSpinnerModel(text string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#C49C7B"))
	return SpinnerModel{m: s, text: text}
}

func (this SpinnerModel) Init() tea.Cmd {
	return this.m.Tick
}

func (this SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return this, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		this.m, cmd = this.m.Update(msg)
		return this, cmd
	}
	return this, nil
}

func (this SpinnerModel) View() string {
	return fmt.Sprintf("%s %s", this.m.View(), this.text)
}

// RunSpinner 启动转圈动画，调用返回的 stop 结束
func RunSpinner(text string) (stop func()) {
	p := tea.NewProgram(NewSpinnerModel(text))
	done := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(done)
	}()
	return func() {
		p.Quit()
		<-done
	}
}

func PrintLogo() {
	colors := []string{
		"#4285F4",
		"#5B92E5",
		"#739FD6",
		"#8CACC7",
		"#A5B9B8",
	}

	logoLines := []string{
		`   ______            _ __      __     ________    ____`,
		`  / ____/___  ____  (_) /___  / /_   / ____/ /   /  _/`,
		` / /   / __ \/ __ \/ / / __ \/ __/  / /   / /    / /  `,
		`/ /___/ /_/ / /_/ / / / /_/ / /_   / /___/ /____/ /   `,
		`\____/\____/ .___/_/_/\____/\__/   \____/_____/___/   `,
		`          /_/                                          `,
	}

	fmt.Println()
	for i, line := range logoLines {
		color := colors[0]
		if i < len(colors) {
			color = colors[i]
		}
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(line))
	}

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00BFFF")).
		Italic(true).
		Render("✨  GitHub Copilot Chat in your terminal  ✨")

	border := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Render("───────────────────────────────────────────────────")

	fmt.Println()
	fmt.Println(lipgloss.PlaceHorizontal(60, lipgloss.Center, subtitle))
	fmt.Println(lipgloss.PlaceHorizontal(60, lipgloss.Center, border))
	fmt.Println()
}
