// Package share builds public links to detection results and renders them as
// QR codes.
//
//	l := share.New("")                     // https://results.aiornot.com
//	link, _ := l.Link("res-1")             // .../aiornot/users/res-1
//	png, _ := l.QRCode("res-1", 256)       // PNG bytes
//	uri, _ := l.QRCodeDataURI("res-1", 0)  // data:image/png;base64,...
//
// QR codes are produced by github.com/skip2/go-qrcode at medium error
// correction.
package share
