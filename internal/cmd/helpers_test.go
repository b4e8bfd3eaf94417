package cmd

import "github.com/ardnew/bitusb/host"

func hostReport(endp uint8, data []byte, err error) host.Report {
	return host.Report{Endpoint: endp, Frame: 1, Data: data, Err: err}
}
