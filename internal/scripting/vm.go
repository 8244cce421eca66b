// Package scripting runs user-supplied JavaScript Othello opponents in a
// sandboxed goja runtime.
package scripting

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// ErrTimeout is returned when a script runs past its time limit.
var ErrTimeout = errors.New("script execution timeout")

// LogEntry represents a single log message from the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// VM wraps a goja runtime with sandbox restrictions and global function injection.
// A goja runtime is not goroutine safe, so every entry point holds mu.
type VM struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int
}

const (
	scriptInitTimeout = 2 * time.Second
	defaultMaxLogs    = 200
)

// NewVM creates a sandboxed goja runtime with global functions injected.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		maxLogs: defaultMaxLogs,
	}
	vm.injectGlobalFunctions()
	return vm
}

// injectGlobalFunctions registers log, console.log and the board helpers,
// then removes globals a script has no business reaching.
func (vm *VM) injectGlobalFunctions() {
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		vm.appendLog(strings.Join(parts, " "))
		return goja.Undefined()
	})

	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	injectBoardHelpers(vm.runtime)

	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("fetch", goja.Undefined())
	vm.runtime.Set("XMLHttpRequest", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

func (vm *VM) appendLog(msg string) {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	if len(vm.logs) >= vm.maxLogs {
		vm.logs = vm.logs[1:]
	}
	vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
}

// Execute runs script source once, typically to define its functions.
func (vm *VM) Execute(source string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.withTimeout(scriptInitTimeout, func() error {
		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		return nil
	})
}

// HasFunc reports whether the script defined a global function called name.
func (vm *VM) HasFunc(name string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	_, ok := vm.function(name)
	return ok
}

func (vm *VM) function(name string) (goja.Callable, bool) {
	fn := vm.runtime.Get(name)
	if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
		return nil, false
	}
	return goja.AssertFunction(fn)
}

// Call invokes the global function name with args converted to JS values and
// returns its result exported to Go. The call is interrupted after timeout.
func (vm *VM) Call(name string, timeout time.Duration, args ...any) (any, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	callable, ok := vm.function(name)
	if !ok {
		return nil, fmt.Errorf("%s() function is not defined", name)
	}

	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = vm.runtime.ToValue(a)
	}

	var out any
	err := vm.withTimeout(timeout, func() error {
		res, err := callable(goja.Undefined(), jsArgs...)
		if err != nil {
			return fmt.Errorf("%s() error: %w", name, err)
		}
		out = res.Export()
		return nil
	})
	return out, err
}

// withTimeout runs fn and interrupts the runtime if it is still going after
// timeout. Callers hold mu.
func (vm *VM) withTimeout(timeout time.Duration, fn func() error) error {
	fired := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		vm.runtime.Interrupt(ErrTimeout)
		close(fired)
	})
	err := fn()
	if !timer.Stop() {
		// Wait for a late interrupt before clearing it.
		<-fired
	}
	vm.runtime.ClearInterrupt()

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("script timed out after %s: %w", timeout, ErrTimeout)
	}
	return err
}

// GetLogs returns a copy of the current log buffer.
func (vm *VM) GetLogs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

// ClearLogs clears the log buffer.
func (vm *VM) ClearLogs() {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	vm.logs = vm.logs[:0]
}
