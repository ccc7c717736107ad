package setup

import "github.com/sirupsen/logrus"

// logFields builds a logrus.Fields from alternating key/value pairs,
// matching the WithFields(logrus.Fields{...}) call sites elsewhere in
// the pack but letting call sites stay a flat argument list.
func logFields(kv ...any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		f[key] = kv[i+1]
	}
	return f
}
