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

const (
	DBOptionName     = "db"
	NameOptionName   = "name"
	OutputOptionName = "output"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep summaries of parsed captures",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			return nil
		},
	}
	cmd.AddCommand(NewImportCommand(cfg))
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewShowCommand(cfg))
	cmd.AddCommand(NewDeleteCommand(cfg))
	cmd.PersistentFlags().StringVar(&dbPath, DBOptionName, "", fmt.Sprintf("Database file. Default %s", config.DefaultDBPath()))
	return cmd
}

func withStore(cfg *config.Config, fn func(st *pkgstore.Store) error) error {
	st, err := pkgstore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
