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

package descriptors

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-usbmon/pkg/config"
	pkgdescriptors "jinr.ru/greenlab/go-usbmon/pkg/descriptors"
	"jinr.ru/greenlab/go-usbmon/pkg/output"
	"jinr.ru/greenlab/go-usbmon/pkg/packet"
	"jinr.ru/greenlab/go-usbmon/pkg/pcapng"
)

const (
	VendorIDOptionName  = "vendor-id"
	ProductIDOptionName = "product-id"
	OutputOptionName    = "output"
)

const descriptorsExample = `
List the device descriptors found in a capture
# usbmon descriptors capture.pcapng

Find the addresses of a device by vendor and product id
# usbmon descriptors --vendor-id 056e --product-id 00ff capture.pcapng
`

func parseID(s string) (uint16, error) {
	id, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return uint16(id), nil
}

func NewCommand(cfg *config.Config) *cobra.Command {
	var vendorID, productID, format string
	cmd := &cobra.Command{
		Use:     "descriptors <capture>",
		Short:   "Print the device descriptors found in a capture",
		Example: descriptorsExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.Check(format, output.FormatYAML, output.FormatJSON); err != nil {
				return err
			}
			if productID != "" && vendorID == "" {
				return fmt.Errorf("--%s requires --%s", ProductIDOptionName, VendorIDOptionName)
			}
			s, err := pcapng.ParseFile(args[0], cfg.Retag)
			if err != nil {
				return err
			}

			if vendorID != "" {
				vendor, err := parseID(vendorID)
				if err != nil {
					return err
				}
				var product *uint16
				if productID != "" {
					p, err := parseID(productID)
					if err != nil {
						return err
					}
					product = &p
				}
				addresses := s.FindDevicesByIDs(vendor, product)
				if addresses == nil {
					addresses = []packet.DeviceAddress{}
				}
				return output.Write(cmd.OutOrStdout(), format, addresses)
			}

			devices := []*pkgdescriptors.DeviceDescriptor{}
			for _, d := range s.DeviceDescriptors() {
				devices = append(devices, d)
			}
			sort.Slice(devices, func(i, j int) bool {
				return devices[i].Address.Less(devices[j].Address)
			})
			return output.Write(cmd.OutOrStdout(), format, devices)
		},
	}
	cmd.Flags().StringVar(&vendorID, VendorIDOptionName, "", "Hexadecimal vendor id to look for. E.g. 1d6b")
	cmd.Flags().StringVar(&productID, ProductIDOptionName, "", "Hexadecimal product id to look for, requires a vendor id")
	cmd.Flags().StringVarP(&format, OutputOptionName, "o", output.FormatYAML, "Output format, yaml or json")
	return cmd
}
