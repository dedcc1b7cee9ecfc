package debugger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/djc132/Computer-Architecture-Project/parser"
)

// TUI is the text user interface over the debugger: program listing,
// registers, memory, pipeline window and a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout *tview.Flex

	ProgramView  *tview.TextView
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	PipelineView *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	// Base address of the memory pane
	MemoryAddress uint32
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.ProgramView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.ProgramView.SetBorder(true).SetTitle(" Program ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.PipelineView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.PipelineView.SetBorder(true).SetTitle(" Pipeline ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 12, 0, false).
		AddItem(t.MemoryView, 0, 2, false).
		AddItem(t.PipelineView, 7, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.ProgramView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyUp:
			if t.App.GetFocus() == t.CommandInput {
				t.CommandInput.SetText(t.Debugger.History.Previous())
				return nil
			}
		case tcell.KeyDown:
			if t.App.GetFocus() == t.CommandInput {
				t.CommandInput.SetText(t.Debugger.History.Next())
				return nil
			}
		}
		return event
	})
}

// handleCommand processes command input
func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

// executeCommand runs a command through the debugger and refreshes
func (t *TUI) executeCommand(cmd string) {
	err := t.Debugger.ExecuteCommand(cmd)
	if errors.Is(err, ErrQuit) {
		t.App.Stop()
		return
	}

	if out := t.Debugger.TakeOutput(); out != "" {
		fmt.Fprint(t.OutputView, out)
	}
	if err != nil {
		fmt.Fprintf(t.OutputView, "[red]%v[white]\n", err)
	}
	t.OutputView.ScrollToEnd()

	t.RefreshAll()
}

// RefreshAll redraws every pane from a fresh snapshot
func (t *TUI) RefreshAll() {
	t.refreshProgram()
	t.refreshRegisters()
	t.refreshMemory()
	t.refreshPipeline()
}

func (t *TUI) refreshProgram() {
	regs := t.Debugger.Service.Registers()

	var sb strings.Builder
	for _, inst := range t.Debugger.Service.Instructions() {
		marker := "  "
		if inst.Address == regs.PC {
			marker = "[yellow]>[white] "
		}
		fmt.Fprintf(&sb, "%s0x%08X  %08X  %s\n", marker, inst.Address, inst.Word, inst.Source)
	}
	t.ProgramView.SetText(sb.String())
}

func (t *TUI) refreshRegisters() {
	regs := t.Debugger.Service.Registers()

	var sb strings.Builder
	for i := 0; i < 32; i += 2 {
		fmt.Fprintf(&sb, "%-5s 0x%08X  %-5s 0x%08X\n",
			parser.RegisterName(i), regs.Registers[i],
			parser.RegisterName(i+1), regs.Registers[i+1])
	}
	fmt.Fprintf(&sb, "PC 0x%08X HI 0x%08X LO 0x%08X\n", regs.PC, regs.HI, regs.LO)
	fmt.Fprintf(&sb, "cycles=%d state=%s\n", regs.Cycles, t.Debugger.Service.State())
	t.RegisterView.SetText(sb.String())
}

func (t *TUI) refreshMemory() {
	region := t.Debugger.Service.Memory(t.MemoryAddress, 256)

	var sb strings.Builder
	for i := 0; i < len(region.Data); i += 16 {
		fmt.Fprintf(&sb, "0x%08X:", region.Address+uint32(i))
		for j := i; j < i+16 && j < len(region.Data); j++ {
			fmt.Fprintf(&sb, " %02X", region.Data[j])
		}
		sb.WriteByte('\n')
	}
	t.MemoryView.SetText(sb.String())
}

func (t *TUI) refreshPipeline() {
	var sb strings.Builder
	for _, stage := range t.Debugger.Service.Pipeline() {
		if stage.Instruction == nil {
			fmt.Fprintf(&sb, "%-4s (empty)\n", stage.Stage)
			continue
		}
		fmt.Fprintf(&sb, "%-4s 0x%08X %s\n",
			stage.Stage, stage.Instruction.Address, stage.Instruction.Source)
	}
	t.PipelineView.SetText(sb.String())
}

// Run starts the TUI event loop
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}
