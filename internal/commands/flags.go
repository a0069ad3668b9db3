package commands

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlag ties a flag to a config key. Lookup only fails on a typo in the
// flag name, so it panics.
func bindFlag(v *viper.Viper, f *pflag.Flag, key string) {
	if f == nil {
		panic("commands: binding unknown flag to " + key)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
