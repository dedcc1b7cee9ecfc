package debugger

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/djc132/Computer-Architecture-Project/parser"
)

// GUI is the graphical front end: a program listing beside tabbed
// register/memory/pipeline/trace views driven from the service
// snapshot.
type GUI struct {
	Debugger *Debugger
	App      fyne.App
	Window   fyne.Window

	ProgramView  *widget.TextGrid
	RegisterView *widget.TextGrid
	MemoryView   *widget.TextGrid
	PipelineView *widget.TextGrid
	TraceView    *widget.TextGrid
	StatusLabel  *widget.Label

	Toolbar *widget.Toolbar

	// Base address of the memory tab
	MemoryAddress uint32
}

// RunGUI runs the graphical debugger
func RunGUI(dbg *Debugger) error {
	gui := newGUI(dbg)
	gui.Window.ShowAndRun()
	return nil
}

// newGUI creates a new graphical user interface
func newGUI(debugger *Debugger) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("MIPS Simulator")

	gui := &GUI{
		Debugger: debugger,
		App:      myApp,
		Window:   myWindow,
	}

	gui.initializeViews()
	gui.buildLayout()

	myWindow.Resize(fyne.NewSize(1200, 800))

	return gui
}

// initializeViews creates all the view panels
func (g *GUI) initializeViews() {
	g.ProgramView = widget.NewTextGrid()
	g.RegisterView = widget.NewTextGrid()
	g.MemoryView = widget.NewTextGrid()
	g.PipelineView = widget.NewTextGrid()
	g.TraceView = widget.NewTextGrid()
	g.StatusLabel = widget.NewLabel("Ready")

	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), func() { g.runCommand("step") }),
		widget.NewToolbarAction(theme.MediaPlayIcon(), func() { g.runCommand("continue") }),
		widget.NewToolbarAction(theme.MediaReplayIcon(), func() { g.runCommand("reset") }),
	)

	g.RefreshAll()
}

// buildLayout creates the main layout: the program listing on the
// left, the tabbed state views on the right.
func (g *GUI) buildLayout() {
	programPanel := container.NewBorder(
		widget.NewLabel("Program"),
		nil, nil, nil,
		container.NewScroll(g.ProgramView),
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Registers", container.NewScroll(g.RegisterView)),
		container.NewTabItem("Memory", container.NewScroll(g.MemoryView)),
		container.NewTabItem("Pipeline", container.NewScroll(g.PipelineView)),
		container.NewTabItem("Trace", container.NewScroll(g.TraceView)),
	)

	split := container.NewHSplit(programPanel, tabs)
	split.SetOffset(0.45)

	content := container.NewBorder(
		g.Toolbar,
		g.StatusLabel,
		nil, nil,
		split,
	)

	g.Window.SetContent(content)
}

// runCommand executes a debugger command and refreshes every view
func (g *GUI) runCommand(cmd string) {
	err := g.Debugger.ExecuteCommand(cmd)
	g.Debugger.TakeOutput()

	if err != nil {
		g.StatusLabel.SetText(fmt.Sprintf("Error: %v", err))
	} else {
		g.StatusLabel.SetText(fmt.Sprintf("State: %s", g.Debugger.Service.State()))
	}

	g.RefreshAll()
}

// RefreshAll redraws every view from a fresh snapshot
func (g *GUI) RefreshAll() {
	g.updateProgram()
	g.updateRegisters()
	g.updateMemory()
	g.updatePipeline()
	g.updateTrace()
}

func (g *GUI) updateProgram() {
	regs := g.Debugger.Service.Registers()

	var sb strings.Builder
	for _, inst := range g.Debugger.Service.Instructions() {
		marker := "  "
		if inst.Address == regs.PC {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s0x%08X  %08X  %s\n", marker, inst.Address, inst.Word, inst.Source)
	}
	if sb.Len() == 0 {
		sb.WriteString("No program loaded")
	}
	g.ProgramView.SetText(sb.String())
}

func (g *GUI) updateRegisters() {
	regs := g.Debugger.Service.Registers()

	var sb strings.Builder
	for i := 0; i < 32; i++ {
		fmt.Fprintf(&sb, "%-5s 0x%08X\n", parser.RegisterName(i), regs.Registers[i])
	}
	fmt.Fprintf(&sb, "PC    0x%08X\nHI    0x%08X\nLO    0x%08X\n", regs.PC, regs.HI, regs.LO)
	fmt.Fprintf(&sb, "cycles=%d instructions=%d\n", regs.Cycles, regs.InstructionCount)
	g.RegisterView.SetText(sb.String())
}

func (g *GUI) updateMemory() {
	region := g.Debugger.Service.Memory(g.MemoryAddress, 512)

	var sb strings.Builder
	for i := 0; i < len(region.Data); i += 16 {
		fmt.Fprintf(&sb, "0x%08X:", region.Address+uint32(i))
		for j := i; j < i+16 && j < len(region.Data); j++ {
			fmt.Fprintf(&sb, " %02X", region.Data[j])
		}
		sb.WriteByte('\n')
	}
	g.MemoryView.SetText(sb.String())
}

func (g *GUI) updatePipeline() {
	var sb strings.Builder
	for _, stage := range g.Debugger.Service.Pipeline() {
		if stage.Instruction == nil {
			fmt.Fprintf(&sb, "%-4s (empty)\n", stage.Stage)
			continue
		}
		fmt.Fprintf(&sb, "%-4s 0x%08X %s\n",
			stage.Stage, stage.Instruction.Address, stage.Instruction.Source)
	}
	g.PipelineView.SetText(sb.String())
}

func (g *GUI) updateTrace() {
	entries := g.Debugger.Service.TraceEntries()

	var sb strings.Builder
	if len(entries) == 0 {
		sb.WriteString("Trace empty (enable with debug mode)")
	}
	for _, entry := range entries {
		fmt.Fprintf(&sb, "[%06d] 0x%08X  %08X  %s\n",
			entry.Cycle, entry.PC, entry.Word, entry.Source)
	}
	g.TraceView.SetText(sb.String())
}
