package shader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// Source provides WGSL text by file name.
type Source interface {
	ShaderSource(fileName string) (string, error)
}

// MapSource is an in-memory Source keyed by file name.
type MapSource map[string]string

func (m MapSource) ShaderSource(fileName string) (string, error) {
	src, ok := m[fileName]
	if !ok {
		return "", fmt.Errorf("shader source %s not found", fileName)
	}
	return src, nil
}

// FileName returns the file a program stage is stored in, relative to the
// shader directory: <name>.vert.wgsl or <name>.frag.wgsl.
func FileName(name string, stage metadata.Stage) string {
	if stage == metadata.StagePixel {
		return name + ".frag.wgsl"
	}
	return name + ".vert.wgsl"
}

type programKey struct {
	name  string
	stage metadata.Stage
}

// Library compiles programs on first request and keeps them for the life of
// the process.
type Library struct {
	source Source

	mu       sync.Mutex
	programs map[programKey]*Program
}

func NewLibrary(source Source) *Library {
	return &Library{
		source:   source,
		programs: make(map[programKey]*Program),
	}
}

func (l *Library) Program(name string, stage metadata.Stage) (*Program, error) {
	key := programKey{name: name, stage: stage}
	l.mu.Lock()
	p, ok := l.programs[key]
	l.mu.Unlock()
	if ok {
		return p, nil
	}

	// Compiling happens outside the lock so Preload can compile in parallel.
	src, err := l.source.ShaderSource(FileName(name, stage))
	if err != nil {
		return nil, err
	}
	p, err = Compile(name, stage, src)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.programs[key]; ok {
		return existing, nil
	}
	core.LogDebug("compiled %s program %s (%d bytes of SPIR-V)", stage, name, len(p.SPIRV))
	l.programs[key] = p
	return p, nil
}

// Preload compiles both stages of every named program on the job system and
// waits for them. All failures are returned together.
func (l *Library) Preload(jobs *core.JobSystem, names []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, name := range names {
		for _, stage := range []metadata.Stage{metadata.StageVertex, metadata.StagePixel} {
			name, stage := name, stage
			wg.Add(1)
			err := jobs.Submit(core.JobTask{
				OnStart: func() error {
					_, err := l.Program(name, stage)
					return err
				},
				OnFailure: func(err error) {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				},
				OnCompletionCallback: wg.Done,
			})
			if err != nil {
				wg.Done()
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Len returns the number of compiled programs.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.programs)
}
