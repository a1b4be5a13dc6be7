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

package stats

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-usbmon/pkg/config"
	"jinr.ru/greenlab/go-usbmon/pkg/output"
	"jinr.ru/greenlab/go-usbmon/pkg/pcapng"
	"jinr.ru/greenlab/go-usbmon/pkg/stats"
)

const (
	AddressPrefixOptionName = "address-prefix"
	OutputOptionName        = "output"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var addressPrefix, format string
	cmd := &cobra.Command{
		Use:   "stats <capture>",
		Short: "Print device descriptors and packet counters of a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.Check(format, output.FormatText, output.FormatJSON); err != nil {
				return err
			}
			if cmd.Flags().Changed(AddressPrefixOptionName) {
				cfg.AddressPrefix = addressPrefix
			}
			s, err := pcapng.ParseFile(args[0], cfg.Retag)
			if err != nil {
				return err
			}
			report := stats.Collect(s, cfg.AddressPrefix)
			if format == output.FormatText {
				return report.WriteText(cmd.OutOrStdout())
			}
			return output.Write(cmd.OutOrStdout(), format, report)
		},
	}
	cmd.Flags().StringVar(&addressPrefix, AddressPrefixOptionName, "", "Only count endpoint addresses starting with this prefix. E.g. 1.2")
	cmd.Flags().StringVarP(&format, OutputOptionName, "o", output.FormatText, "Output format, text or json")
	return cmd
}
