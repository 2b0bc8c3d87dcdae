// Package pipeline runs the sequencing fixture generator as a chain of concurrent processes connected by channels.
// The pattern follows S. Lampa's composable concurrent pipelines (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/).
package pipeline

import "sync"

// BUFFERSIZE is the size of the buffer used by the pipeline channels
const BUFFERSIZE int = 64

// process is the interface used by pipeline
type process interface {
	Run()
}

// Pipeline holds the processes in the order their channels are connected
type Pipeline struct {
	processes []process
}

// NewPipeline is the pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcesses is a method to add processes to the end of the pipeline
func (Pipeline *Pipeline) AddProcesses(procs ...process) {
	Pipeline.processes = append(Pipeline.processes, procs...)
}

// Run is a method that starts every process and blocks until all of them have returned.
// The last process runs in the foreground, it drains the channel chain and so controls the flow.
func (Pipeline *Pipeline) Run() {
	if len(Pipeline.processes) == 0 {
		return
	}
	var wg sync.WaitGroup
	upstream := Pipeline.processes[:len(Pipeline.processes)-1]
	wg.Add(len(upstream))
	for _, proc := range upstream {
		go func(proc process) {
			defer wg.Done()
			proc.Run()
		}(proc)
	}
	Pipeline.processes[len(Pipeline.processes)-1].Run()

	// upstream processes may still be logging after closing their output
	wg.Wait()
}

// GetNumProcesses is a method to return the number of processes registered in a pipeline
func (Pipeline *Pipeline) GetNumProcesses() int {
	return len(Pipeline.processes)
}
