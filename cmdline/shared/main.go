/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shared

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patrickwbarnes/authenticode-scripts/config"
)

var (
	ArgConfig   string
	ArgLogLevel string

	CurrentConfig *config.Config
)

// Register adds the flags every command carries.
func Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&ArgConfig, "config", "c", "", "Configuration file")
	cmd.PersistentFlags().StringVar(&ArgLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// InitConfig loads the optional config file and initializes logging. Meant
// to be called from PersistentPreRunE.
func InitConfig(cmd *cobra.Command, args []string) error {
	conf, err := config.Load(ArgConfig)
	if err != nil {
		return err
	}
	CurrentConfig = conf
	level := ArgLogLevel
	if level == "" {
		level = conf.LogLevel
	}
	return SetupLogging(level)
}

// Main runs a root command and exits the process with the command's exit
// code on failure.
func Main(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// Fail prints the error and terminates. Errors carrying a specific exit
// code use it; anything else is an unhandled platform error.
func Fail(err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
	return err
}
