package cli

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/cryptox"
	"github.com/dmitrijs2005/slothapp/internal/wallet"
)

var ErrVerificationFailed = errors.New("verification failed")

func (app *App) keygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fromPassphrase := fs.Bool("passphrase", false, "derive the key from a passphrase")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if !*fromPassphrase {
		key, err := cryptox.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(app.out, key)
		return nil
	}

	pass, err := GetSecret(app.fd, "Passphrase", app.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	salt, err := GetSimpleText(app.reader, "Salt", app.out)
	if err != nil {
		return err
	}
	if salt == "" {
		return ErrEmptyInput
	}

	key := cryptox.DeriveKey(pass, []byte(salt))
	defer common.WipeByteArray(key)
	fmt.Fprintln(app.out, hex.EncodeToString(key))
	return nil
}

func (app *App) message(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	fmt.Fprintln(app.out, wallet.GenerateAuthMessage(args[0]))
	return nil
}

func (app *App) sign(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}

	raw, err := GetSecret(app.fd, "Private key (hex)", app.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(raw)

	key, err := wallet.ParsePrivateKey(string(raw))
	if err != nil {
		return err
	}
	sig, err := wallet.SignMessage(wallet.GenerateAuthMessage(args[0]), key)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "address:   %s\nsignature: %s\n", wallet.AddressOf(key), sig)
	return nil
}

func (app *App) verify(args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	res := wallet.VerifyWalletWithDetails(args[0], args[1], args[2])
	if !res.Valid {
		fmt.Fprintf(app.out, "invalid (%s): %s\n", res.Reason, res.Message)
		return ErrVerificationFailed
	}
	fmt.Fprintln(app.out, "valid")
	return nil
}
