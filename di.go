package main

import (
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"medscribe/clipboard"
	"medscribe/config"
	"medscribe/controller"
	"medscribe/generate"
	"medscribe/prefs"
)

// fakeChunkDelay paces the offline generator so streaming is visible.
const fakeChunkDelay = 40 * time.Millisecond

func newInjector(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.Provide(injector, func(i do.Injector) (*generate.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		return generate.NewClient(c.Endpoint, c.Timeout), nil
	})
	do.Provide(injector, func(i do.Injector) (generate.Generator, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.Fake {
			f := generate.NewFake(nil, nil)
			f.Delay = fakeChunkDelay
			return f, nil
		}
		return do.MustInvoke[*generate.Client](i), nil
	})
	do.Provide(injector, func(i do.Injector) (*prefs.Store, error) {
		c := do.MustInvoke[*config.Config](i)
		dir, err := prefs.ResolveDir(c.ConfigDir)
		if err != nil {
			return nil, err
		}
		return prefs.New(afero.NewOsFs(), dir), nil
	})
	do.Provide(injector, func(i do.Injector) (clipboard.Writer, error) {
		return clipboard.System{}, nil
	})
	do.Provide(injector, func(i do.Injector) (*controller.Controller, error) {
		c := do.MustInvoke[*config.Config](i)
		return controller.New(controller.Options{
			Generator: do.MustInvoke[generate.Generator](i),
			Clipboard: do.MustInvoke[clipboard.Writer](i),
			Store:     do.MustInvoke[*prefs.Store](i),
			CopyReset: c.CopyReset,
			Mode:      c.DefaultMode(),
		}), nil
	})

	return injector
}
