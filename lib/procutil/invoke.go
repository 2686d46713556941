//
// Copyright (c) SAS Institute Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package procutil

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

type Command struct {
	Proc   *exec.Cmd
	Output string

	ctx   context.Context
	stdio *bytes.Buffer
}

// Prepare to launch a subprocess with the given command-line. Standard
// output and standard error are captured together. The process is killed if
// ctx is cancelled; no deadline is imposed otherwise.
func CommandContext(ctx context.Context, cmdline []string) *Command {
	proc := exec.CommandContext(ctx, cmdline[0], cmdline[1:]...)
	stdio := new(bytes.Buffer)
	proc.Stdout = stdio
	proc.Stderr = stdio
	return &Command{
		ctx:   ctx,
		Proc:  proc,
		stdio: stdio,
	}
}

// Run the subprocess and wait for it to complete.
func (c *Command) Run() error {
	err := c.Proc.Run()
	c.Output = c.stdio.String()
	if err != nil {
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		default:
			return err
		}
	}
	return nil
}

func (c *Command) FormatCmdline() string {
	words := make([]string, len(c.Proc.Args))
	for i, word := range c.Proc.Args {
		if strings.Contains(word, " ") {
			word = "\"" + word + "\""
		}
		words[i] = word
	}
	return strings.Join(words, " ")
}

// ExitCode returns the exit status carried by an error from Run, or -1 if
// the error does not wrap an exit status.
func ExitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
