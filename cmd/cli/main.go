package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/nupush/nupush/pkg/config"
	"github.com/nupush/nupush/pkg/dotnet"
	"github.com/nupush/nupush/pkg/manifest"
	"github.com/nupush/nupush/pkg/registry"
	"github.com/nupush/nupush/pkg/release"
	"github.com/nupush/nupush/pkg/vcs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Version = "development"

func main() {
	cliConfig := initCliConfig()
	root := RootCommandBuilder{
		publishCommandBuilder: PublishCommandBuilder{
			cliConfig: cliConfig,
		},
	}
	if err := root.Build().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type RootCommandBuilder struct {
	publishCommandBuilder PublishCommandBuilder
}

func (builder RootCommandBuilder) Build() *cobra.Command {
	rootCmd := cobra.Command{
		Use:     "nupush",
		Short:   "Determine, build and publish unreleased NuGet package versions",
		Version: Version,
	}
	rootCmd.AddCommand(builder.publishCommandBuilder.Build())
	return &rootCmd
}

type PublishCommandBuilder struct {
	cliConfig *viper.Viper
}

func (builder PublishCommandBuilder) Build() *cobra.Command {
	var workingDir string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish every configured package whose version is not yet in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			log, err := initLogger()
			if err != nil {
				return err
			}

			cfg, err := config.Load(builder.cliConfig)
			if err != nil {
				return err
			}

			if workingDir == "" {
				workingDir, err = os.Getwd()
				if err != nil {
					return err
				}
			}

			branch, sha, err := detectHead(workingDir, cfg)
			if err != nil {
				return err
			}

			extractor, err := manifest.NewExtractor(log, cfg.VersionRegex)
			if err != nil {
				return err
			}

			var tagger release.Tagger
			if len(cfg.TaggableBranches) > 0 {
				githubTagger, err := vcs.NewGithubTagger(
					log,
					http.DefaultClient,
					cfg.RepoToken,
					cfg.Repository,
				)
				if err != nil {
					return err
				}
				tagger = githubTagger
			}

			releaser := release.Releaser{
				Log:    log,
				Config: cfg,
				Loader: extractor,
				Planner: &release.Planner{
					Log:      log,
					Registry: registry.NewClient(log, cfg.Source, http.DefaultClient),
				},
				Tagger: tagger,
				Pipeline: dotnet.NewPipeline(
					log,
					workingDir,
					cfg.Source,
					cfg.APIKey,
					cfg.IncludeSymbols,
				),
				Branch:    branch,
				CommitSHA: sha,
				Now:       time.Now,
			}
			return releaser.Run(cobraCmd.Context())
		},
	}
	cmd.Flags().
		StringVarP(&workingDir, "working-dir", "w", "", "Directory containing the checkout to release. Defaults to the current directory")
	return cmd
}

// detectHead resolves the triggering branch and commit from the local
// checkout. A missing checkout is only fatal when tagging is configured,
// and a configured commit sha always wins over the detected head.
func detectHead(workingDir string, cfg config.Config) (string, string, error) {
	branch := ""
	sha := cfg.CommitSHA

	repository, err := vcs.OpenRepository(workingDir)
	if err == nil {
		var detectedSHA string
		branch, detectedSHA, err = repository.Head()
		if sha == "" {
			sha = detectedSHA
		}
	}
	if err != nil && len(cfg.TaggableBranches) > 0 {
		return "", "", err
	}

	return branch, sha, nil
}

func initCliConfig() *viper.Viper {
	cliConfig := viper.New()
	cliConfig.AutomaticEnv()
	return cliConfig
}

func initLogger() (logr.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zapLogger), nil
}
