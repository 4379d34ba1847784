package cli

import (
	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// orphanFlag is --orphans. Bad values fail while flags are parsed.
type orphanFlag struct {
	policy domain.OrphanPolicy
	set    bool
}

var _ pflag.Value = (*orphanFlag)(nil)

func (f *orphanFlag) String() string { return string(f.policy) }

func (f *orphanFlag) Set(s string) error {
	p, err := domain.ParseOrphanPolicy(s)
	if err != nil {
		return err
	}
	f.policy, f.set = p, true
	return nil
}

func (f *orphanFlag) Type() string { return "policy" }

// resolve prefers the flag over the config value.
func (f *orphanFlag) resolve(s *session) domain.OrphanPolicy {
	if f.set {
		return f.policy
	}
	return s.cfg.Policy()
}

func addOrphanFlag(fs *pflag.FlagSet, f *orphanFlag) {
	fs.Var(f, "orphans", "How to treat items missing from the project: recreate, skip or warn")
}

// flagError marks usage mistakes so they exit with the validation code.
func flagError(cmd *cobra.Command, err error) error {
	return domain.WrapError(domain.KindValidation, cmd.Name(), err)
}
