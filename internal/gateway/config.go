package gateway

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ScheduleURL string `mapstructure:"schedule_url"`
	TokenURL    string `mapstructure:"token_url"`
	IngressURL  string `mapstructure:"ingress_url"`
	// Timeout of 0 disables the client-side deadline; a hung gateway call
	// then parks the owning session in its pending state.
	Timeout time.Duration `mapstructure:"timeout"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("schedule_url"), "http://localhost:7880")
	v.SetDefault(p("token_url"), "http://localhost:7881")
	v.SetDefault(p("ingress_url"), "http://localhost:7882")
	v.SetDefault(p("timeout"), "0s")
}
