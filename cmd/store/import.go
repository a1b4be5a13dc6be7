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
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-usbmon/pkg/config"
	"jinr.ru/greenlab/go-usbmon/pkg/pcapng"
	pkgstore "jinr.ru/greenlab/go-usbmon/pkg/store"
)

const OverwriteOptionName = "overwrite"

func NewImportCommand(cfg *config.Config) *cobra.Command {
	var name string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <capture>",
		Short: "Parse a capture and store its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = filepath.Base(args[0])
			}
			s, err := pcapng.ParseFile(args[0], cfg.Retag)
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *pkgstore.Store) error {
				c, err := st.Import(name, args[0], s, overwrite)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d pairs, %d pending, %d devices\n",
					c.Name, c.Pairs, c.Pending, len(c.Stats.Devices))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, NameOptionName, "", "Name to store the capture under. Default is the file name")
	cmd.Flags().BoolVar(&overwrite, OverwriteOptionName, false, "Replace a capture stored under the same name")
	return cmd
}
