package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/djc132/Computer-Architecture-Project/api"
	"github.com/djc132/Computer-Architecture-Project/config"
	"github.com/djc132/Computer-Architecture-Project/debugger"
	"github.com/djc132/Computer-Architecture-Project/loader"
	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/service"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start the interactive command-line debugger")
		tuiMode     = flag.Bool("tui", false, "Use the TUI (Text User Interface) debugger")
		guiMode     = flag.Bool("gui", false, "Use the graphical debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		maxSteps    = flag.Int("max-steps", vm.DefaultRunStepLimit, "Per-run instruction limit")
		enableTrace = flag.Bool("trace", false, "Enable execution trace (debug mode)")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: stdout)")
		enableStats = flag.Bool("stats", false, "Print execution statistics after the run")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump symbol table and exit")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("MIPS Simulator %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	if *apiServer {
		runAPIServer(*apiPort, cfg)
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no program file given")
		printHelp()
		os.Exit(1)
	}
	programPath := flag.Arg(0)

	machine := vm.NewMachine()
	machine.RunStepLimit = *maxSteps
	if machine.RunStepLimit <= 0 {
		machine.RunStepLimit = cfg.Execution.MaxSteps
	}
	machine.DebugMode = *enableTrace || cfg.Execution.EnableTrace
	machine.Trace.MaxEntries = cfg.Trace.MaxEntries

	svc := service.NewSimulatorService(machine)

	count, err := loader.LoadFile(machine, programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d instructions from %s\n", count, programPath)

	if *dumpSymbols {
		dumpSymbolTable(svc)
		os.Exit(0)
	}

	switch {
	case *tuiMode:
		dbg := debugger.NewDebugger(svc)
		if err := debugger.NewTUI(dbg).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	case *guiMode:
		dbg := debugger.NewDebugger(svc)
		if err := debugger.RunGUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "GUI error: %v\n", err)
			os.Exit(1)
		}
	case *debugMode:
		runCommandLineDebugger(svc)
	default:
		runBatch(svc, *enableTrace, *traceFile, *enableStats || cfg.Execution.EnableStats)
	}
}

// runBatch executes the loaded program to completion and reports the
// final state.
func runBatch(svc *service.SimulatorService, trace bool, traceFile string, stats bool) {
	machine := svc.Machine()

	steps, err := svc.Run()
	switch {
	case err == nil:
		fmt.Printf("Program halted after %d instructions\n", steps)
	case errors.Is(err, vm.ErrPCOutOfBounds):
		fmt.Printf("Program ran off the end after %d instructions\n", steps)
	case errors.Is(err, vm.ErrStepLimit):
		fmt.Fprintf(os.Stderr, "Error: %v after %d instructions\n", err, steps)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	printRegisterSummary(svc)

	if trace {
		out := os.Stdout
		if traceFile != "" {
			f, err := os.Create(traceFile) // #nosec G304 -- user-supplied output path
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot create trace file: %v\n", err)
				os.Exit(1)
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		if err := machine.Trace.Flush(out); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot write trace: %v\n", err)
		}
	}

	if stats {
		if err := machine.Statistics.WriteReport(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot write statistics: %v\n", err)
		}
	}
}

// runCommandLineDebugger drives the debugger from stdin
func runCommandLineDebugger(svc *service.SimulatorService) {
	dbg := debugger.NewDebugger(svc)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("MIPS debugger. Type 'help' for commands.")
	for {
		fmt.Print("(sim) ")
		if !scanner.Scan() {
			return
		}

		err := dbg.ExecuteCommand(scanner.Text())
		if out := dbg.TakeOutput(); out != "" {
			fmt.Print(out)
		}
		if errors.Is(err, debugger.ErrQuit) {
			return
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

// runAPIServer starts the HTTP API with graceful shutdown
func runAPIServer(port int, cfg *config.Config) {
	if port == 0 {
		port = cfg.API.Port
	}
	server := api.NewServerWithVersion(port, Version, Commit, Date)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
		})
	}

	go func() {
		<-sigChan
		performShutdown()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printRegisterSummary(svc *service.SimulatorService) {
	regs := svc.Registers()
	for i := 0; i < 32; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Printf("%-5s 0x%08X   ", parser.RegisterName(j), regs.Registers[j])
		}
		fmt.Println()
	}
	fmt.Printf("PC    0x%08X   HI    0x%08X   LO    0x%08X\n", regs.PC, regs.HI, regs.LO)
	fmt.Printf("cycles=%d instructions=%d\n", regs.Cycles, regs.InstructionCount)
}

func dumpSymbolTable(svc *service.SimulatorService) {
	symbols := svc.Symbols()
	if len(symbols) == 0 {
		fmt.Println("No symbols")
		return
	}
	for _, inst := range svc.Instructions() {
		for name, addr := range symbols {
			if addr == inst.Address {
				fmt.Printf("%-20s 0x%08X  %s\n", name, addr, inst.Source)
			}
		}
	}
}

func printHelp() {
	fmt.Println(`MIPS Simulator - a two-pass assembler and single-cycle interpreter

Usage: mips-sim [options] program.s

Options:
  -debug          Interactive command-line debugger
  -tui            Full-screen TUI debugger
  -gui            Graphical debugger
  -api-server     HTTP API server mode (no program file needed)
  -port N         API server port (default 8080)
  -max-steps N    Per-run instruction limit (default 10000)
  -trace          Record an execution trace
  -trace-file F   Write the trace to F instead of stdout
  -stats          Print execution statistics
  -dump-symbols   Print the symbol table and exit
  -version        Show version information

Program format: one instruction per line, '#' comments, 'label:'
definitions, operands comma-separated, memory operands as offset(base),
immediates in decimal, 0x hex or 0b binary.`)
}
