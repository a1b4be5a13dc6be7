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

package records

import (
	"encoding/base64"
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/spf13/cobra"

	usblayers "jinr.ru/greenlab/go-usbmon/pkg/layers"
	"jinr.ru/greenlab/go-usbmon/pkg/log"
	"jinr.ru/greenlab/go-usbmon/pkg/pcapng"
)

// NewCommand prints raw records for use as test fixtures
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base64 <capture>",
		Short: "Print every usbmon record of a capture as one base64 line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pcapng.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			src, err := pcapng.NewBlockSource(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			skipped := 0
			err = pcapng.ForEachRecord(src, func(lt layers.LinkType, data []byte) error {
				if lt != usblayers.LinkTypeUsbLinuxMmapped {
					skipped++
					return nil
				}
				_, err := fmt.Fprintln(out, base64.StdEncoding.EncodeToString(data))
				return err
			})
			if skipped > 0 {
				log.Warning("Skipped %d records of other link types", skipped)
			}
			return err
		},
	}
	return cmd
}
