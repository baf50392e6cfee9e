// Package properties implements the message-properties area carried inside
// PUT messages: an ordered set of typed name/value pairs with its wire
// codec.
//
// Wire layout (all integers big-endian, word = 4 bytes):
//
//	0: headerWords(8) | reserved(8) | numProperties(16)
//	4: totalWords(32)                      area size incl. header and padding
//	8: property entries, packed:
//	   type(8) | nameLen(8) | valueLen(16) | name | value
//	…: padding to a word boundary; last byte = pad count in [1,4]
//
// The PUT message iterator treats this area as opaque except for the
// totalWords field (see AreaLength); decoding the entries is the concern of
// this package alone.
package properties
