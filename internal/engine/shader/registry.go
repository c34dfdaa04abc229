package shader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
	"github.com/Faultbox/midgard-shadows/internal/logger"
)

// Registry compiles programs once and hands out the cached handle by name.
// Failed compiles are not cached, so a later call retries.
type Registry struct {
	ctx      gpu.Context
	programs map[string]uint32
	log      *zap.Logger
}

// NewRegistry returns an empty registry bound to ctx.
func NewRegistry(ctx gpu.Context) *Registry {
	return &Registry{
		ctx:      ctx,
		programs: map[string]uint32{},
		log:      logger.Named("shader"),
	}
}

// Context returns the context programs are compiled on.
func (r *Registry) Context() gpu.Context {
	return r.ctx
}

// Program returns the program registered under name, compiling it on first use.
func (r *Registry) Program(name, vertexSrc, fragmentSrc string) (uint32, error) {
	if program, ok := r.programs[name]; ok {
		return program, nil
	}

	program, err := CompileProgram(r.ctx, vertexSrc, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", name, err)
	}

	r.programs[name] = program
	r.log.Debug("program compiled", zap.String("name", name), zap.Uint32("id", program))
	return program, nil
}

// Lookup returns a previously compiled program.
func (r *Registry) Lookup(name string) (uint32, bool) {
	program, ok := r.programs[name]
	return program, ok
}

// Len returns the number of cached programs.
func (r *Registry) Len() int {
	return len(r.programs)
}

// Release deletes every cached program.
func (r *Registry) Release() {
	for name, program := range r.programs {
		r.ctx.DeleteProgram(program)
		delete(r.programs, name)
	}
}
