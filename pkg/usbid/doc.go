// Package usbid looks up vendor and product names in a USB ID database
// (the usb.ids file shipped with usbutils and hwdata).
//
// The file lists vendors at column zero and their products indented by one
// tab, each as four hex digits, two spaces and a name:
//
//	1209  Generic
//		c003  bitusb HID
//
// Sections after the vendor list (device classes, HID usages, languages)
// start with a keyword and are skipped.
//
// # Usage
//
//	db, err := usbid.Load()
//	if err == nil {
//		fmt.Println(db.Vendor(0x1209), db.Product(0x1209, 0xc003))
//	}
//
// A nil *Database is valid and knows no names, so callers can pass the
// result of a failed [Load] along without checking.
package usbid
