/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package store

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-usbmon/pkg/config"
	"jinr.ru/greenlab/go-usbmon/pkg/output"
	pkgstore "jinr.ru/greenlab/go-usbmon/pkg/store"
)

func NewShowCommand(cfg *config.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.Check(format, output.FormatText, output.FormatYAML, output.FormatJSON); err != nil {
				return err
			}
			return withStore(cfg, func(st *pkgstore.Store) error {
				c, err := st.Get(args[0])
				if err != nil {
					return err
				}
				if format == output.FormatText {
					return c.Stats.WriteText(cmd.OutOrStdout())
				}
				return output.Write(cmd.OutOrStdout(), format, c)
			})
		},
	}
	cmd.Flags().StringVarP(&format, OutputOptionName, "o", output.FormatYAML, "Output format, text, yaml or json")
	return cmd
}

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *pkgstore.Store) error {
				return st.Delete(args[0])
			})
		},
	}
	return cmd
}
