package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/echomind-ai/echomind/pkg/audio"
	"github.com/echomind-ai/echomind/pkg/capture"
	"github.com/echomind-ai/echomind/pkg/logging"
	"github.com/echomind-ai/echomind/pkg/provider"
	"github.com/echomind-ai/echomind/pkg/state"
	"github.com/echomind-ai/echomind/pkg/store"
	"github.com/echomind-ai/echomind/pkg/turn"
	"github.com/echomind-ai/echomind/pkg/ui"
)

var (
	emailFlag    string
	passwordFlag string
	registerFlag bool
	backendFlag  string
	audioFlag    string
	thinkingFlag bool
	muteFlag     bool

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant",
		Long:  longChat,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := store.NewClient(viper.GetString("endpoints.memory"))

			if registerFlag {
				if err := client.Register(emailFlag, passwordFlag); err != nil {
					return fmt.Errorf("registration failed: %w", err)
				}
			}

			if err := client.Login(emailFlag, passwordFlag); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			extractor, generator, err := buildBackend()
			if err != nil {
				return err
			}

			machine := state.NewMachine()
			machine.SetThinking(thinkingFlag)

			options := []turn.OrchestratorOption{}
			if !muteFlag {
				options = append(options,
					turn.WithSynthesizer(buildSynthesizer()),
					turn.WithPlayer(audio.NewPlayer()),
				)
			}

			orch := turn.NewOrchestrator(client, extractor, generator, machine, options...)

			if err := orch.Seed(); err != nil {
				return fmt.Errorf("failed to load memories: %w", err)
			}

			if audioFlag != "" {
				return runAudioTurn(orch, machine)
			}

			home, _ := os.UserHomeDir()
			if err := logging.ToFile(home + "/." + projectName + "/echomind.log"); err != nil {
				return err
			}
			defer logging.Close()

			program := tea.NewProgram(ui.New(orch), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
)

/*
buildBackend wires extraction and generation to the configured provider.
Speech synthesis stays on Gemini regardless of the backend choice.
*/
func buildBackend() (provider.Extractor, provider.Generator, error) {
	switch backendFlag {
	case "google":
		prvdr := provider.NewGoogleProvider(
			provider.WithGoogleClient(),
			provider.WithGoogleModels(
				viper.GetString("models.fast"),
				viper.GetString("models.deep"),
			),
			provider.WithGoogleThinkingBudget(viper.GetInt32("thinking.budget")),
		)
		return prvdr, prvdr, nil
	case "anthropic":
		prvdr := provider.NewAnthropicProvider(provider.WithAnthropicClient())
		return prvdr, prvdr, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q, expected google or anthropic", backendFlag)
	}
}

func buildSynthesizer() provider.Synthesizer {
	return provider.NewGoogleProvider(
		provider.WithGoogleClient(),
		provider.WithGoogleSpeechModel(viper.GetString("models.speech")),
		provider.WithGoogleVoice(viper.GetString("speech.voice")),
	)
}

/*
runAudioTurn transcribes one recorded audio file and runs a single turn on
the transcript. A source that cannot capture at all aborts before any
pipeline state is touched.
*/
func runAudioTurn(orch *turn.Orchestrator, machine *state.Machine) error {
	ctx := context.Background()
	source := capture.NewFileSource(audioFlag, provider.NewOpenAIProvider(provider.WithOpenAIClient()))

	machine.SetListening(true)
	utterance, err := source.Capture(ctx)
	machine.SetListening(false)

	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	log.Info("captured utterance", "text", utterance)

	if err := orch.ProcessTurn(ctx, utterance); err != nil {
		return err
	}

	for _, msg := range orch.Transcript() {
		fmt.Printf("%s: %s\n", msg.Role, msg.Content)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	chatCmd.Flags().StringVar(&passwordFlag, "password", "", "Account password")
	chatCmd.Flags().BoolVar(&registerFlag, "register", false, "Create the account before logging in")
	chatCmd.Flags().StringVar(&backendFlag, "backend", "google", "Generation backend (google or anthropic)")
	chatCmd.Flags().StringVar(&audioFlag, "audio", "", "Transcribe this audio file and run one turn")
	chatCmd.Flags().BoolVar(&thinkingFlag, "thinking", false, "Start with thinking mode enabled")
	chatCmd.Flags().BoolVar(&muteFlag, "mute", false, "Disable speech synthesis and playback")

	chatCmd.MarkFlagRequired("email")
	chatCmd.MarkFlagRequired("password")
}

var longChat = `
Start an interactive chat with EchoMind, or run a single turn from a
recorded audio file.

Examples:
  # Interactive session
  echomind chat --email ada@example.com --password secret

  # First run, creating the account
  echomind chat --register --email ada@example.com --password secret

  # One spoken turn from a recording, using the deeper thinking model
  echomind chat --email ada@example.com --password secret --audio note.wav --thinking
`
