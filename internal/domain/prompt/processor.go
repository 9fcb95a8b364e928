package prompt

import (
	"context"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ProcessorImpl implements the Processor interface
type ProcessorImpl struct {
	modules []Module
	log     zerolog.Logger
}

// NewProcessor creates an interview prompt processor with the standard
// module order: role framing first, output contract last.
func NewProcessor(log zerolog.Logger) *ProcessorImpl {
	processor := &ProcessorImpl{
		modules: make([]Module, 0),
		log:     log.With().Str("component", "prompt-processor").Logger(),
	}

	processor.RegisterModule(NewRoleFramingModule())
	processor.RegisterModule(NewThemeCatalogModule())
	processor.RegisterModule(NewToneRulesModule())
	processor.RegisterModule(NewFocusThemeModule())
	processor.RegisterModule(NewConversationContextModule())
	processor.RegisterModule(NewOutputContractModule())

	return processor
}

// RegisterModule adds a module to the processor
func (p *ProcessorImpl) RegisterModule(module Module) {
	p.modules = append(p.modules, module)
	p.log.Debug().Str("module", module.Name()).Msg("registered prompt module")
}

// Process applies all relevant modules to the messages
func (p *ProcessorImpl) Process(
	ctx context.Context,
	promptCtx *Context,
	messages []openai.ChatCompletionMessage,
) ([]openai.ChatCompletionMessage, error) {
	result := messages
	appliedModules := make([]string, 0)

	for _, module := range p.modules {
		if module.ShouldApply(ctx, promptCtx, result) {
			var err error
			result, err = module.Apply(ctx, promptCtx, result)
			if err != nil {
				p.log.Error().
					Err(err).
					Str("module", module.Name()).
					Msg("failed to apply prompt module")
				return messages, err
			}
			appliedModules = append(appliedModules, module.Name())
		}
	}

	if len(appliedModules) > 0 {
		p.log.Debug().
			Strs("applied_modules", appliedModules).
			Str("session_id", promptCtx.SessionID).
			Msg("applied prompt modules")
	}

	return result, nil
}
