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

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-usbmon/pkg/config"
	pkgstore "jinr.ru/greenlab/go-usbmon/pkg/store"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *pkgstore.Store) error {
				captures, err := st.List()
				if err != nil {
					return err
				}
				for _, c := range captures {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d pairs\t%s\n",
						c.Name, c.ImportedAt.Format("2006-01-02 15:04:05"), c.Pairs, c.Source)
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	return cmd
}
