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

package text

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-usbmon/pkg/config"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/pcapng"
)

const (
	AddressPrefixOptionName = "address-prefix"
	RetagOptionName         = "retag"
)

const textExample = `
Print the transfers of device 1.2
# usbmon text --address-prefix 1.2 capture.pcapng

Keep the URB ids as captured
# usbmon text --retag=false capture.pcapng.gz
`

func NewCommand(cfg *config.Config) *cobra.Command {
	var addressPrefix string
	var retag bool
	cmd := &cobra.Command{
		Use:     "text <capture>",
		Short:   "Print a capture as usbmon text lines in timestamp order",
		Example: textExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed(AddressPrefixOptionName) {
				cfg.AddressPrefix = addressPrefix
			}
			if cmd.Flags().Changed(RetagOptionName) {
				cfg.Retag = retag
			}
			s, err := pcapng.ParseFile(args[0], cfg.Retag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range s.InOrder() {
				if !packet.HasAddressPrefix(p, cfg.AddressPrefix) {
					continue
				}
				if _, err := fmt.Fprintln(out, p.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addressPrefix, AddressPrefixOptionName, "", "Only print endpoint addresses starting with this prefix. E.g. 1.2")
	cmd.Flags().BoolVar(&retag, RetagOptionName, config.DefaultRetag, "Give every URB pair a unique tag")
	return cmd
}
