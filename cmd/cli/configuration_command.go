package cli

import (
	"fmt"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RobinBoers/bix/internal/utils"
)

const (
	configurationCommandUseConstant              = "config"
	configurationCommandShortDescriptionConstant = "Print the effective configuration"
	configurationCommandLongDescriptionConstant  = "config prints the configuration after layering the embedded defaults, the configuration file, BIX_ environment variables and flags."
	configurationTagNameConstant                 = "mapstructure"
	configurationSourceTemplateConstant          = "# configuration file: %s\n"
	configurationEncodeErrorTemplateConstant     = "unable to encode configuration: %w"
	configurationSourceEmbeddedConstant          = "none (embedded defaults)"
	yamlIndentationConstant                      = 2
)

type configurationCommandBuilder struct {
	ConfigurationProvider func() ApplicationConfiguration
	MetadataProvider      func() utils.LoadedConfiguration
}

func (builder *configurationCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   configurationCommandUseConstant,
		Short: configurationCommandShortDescriptionConstant,
		Long:  configurationCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *configurationCommandBuilder) run(command *cobra.Command, _ []string) error {
	settings, encodeError := EncodeConfiguration(builder.ConfigurationProvider().Sanitize())
	if encodeError != nil {
		return encodeError
	}

	configurationSource := configurationSourceEmbeddedConstant
	if builder.MetadataProvider != nil {
		if usedFile := builder.MetadataProvider().ConfigFileUsed; len(usedFile) > 0 {
			configurationSource = usedFile
		}
	}

	output := command.OutOrStdout()
	if _, writeError := fmt.Fprintf(output, configurationSourceTemplateConstant, configurationSource); writeError != nil {
		return writeError
	}
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(yamlIndentationConstant)
	if writeError := encoder.Encode(settings); writeError != nil {
		return fmt.Errorf(configurationEncodeErrorTemplateConstant, writeError)
	}
	return encoder.Close()
}

// EncodeConfiguration converts the configuration into nested maps keyed by the configuration file names.
func EncodeConfiguration(configuration ApplicationConfiguration) (map[string]any, error) {
	settings := map[string]any{}
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: configurationTagNameConstant, Result: &settings})
	if decoderError != nil {
		return nil, fmt.Errorf(configurationEncodeErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(configuration); decodeError != nil {
		return nil, fmt.Errorf(configurationEncodeErrorTemplateConstant, decodeError)
	}
	return settings, nil
}
