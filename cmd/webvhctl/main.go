// Command webvhctl is an informal debugging CLI for creating, updating,
// deactivating, and resolving did:webvh identifiers, grounded on
// atproto/crypto/cmd/atp-crypto's cli.App/cli.Command structure.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhcrypto"
	"github.com/geunkim/didwebvh/webvhdoc"
	"github.com/geunkim/didwebvh/webvhhost"
	"github.com/geunkim/didwebvh/webvhlog"
)

func main() {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	app := cli.App{
		Name:  "webvhctl",
		Usage: "debugging CLI for did:webvh log creation, update, deactivation, and resolution",
		Commands: []*cli.Command{
			createCommand(),
			updateCommand(),
			deactivateCommand(),
			resolveCommand(),
		},
	}
	app.RunAndExitOnError()
}

// policyFromEnv translates the IGNORE_ASSERTION_* / IGNORE_WITNESS_IS_AUTHORIZED
// environment variables into a webvh.Policy, per spec.md §6.4. This is
// the only place in the module permitted to read these from the process
// environment; the engine itself never does.
func policyFromEnv() webvh.Policy {
	flag := func(name string) bool {
		return strings.EqualFold(os.Getenv(name), "true") || os.Getenv(name) == "1"
	}
	return webvh.Policy{
		IgnoreKeyIsAuthorized:      flag("IGNORE_ASSERTION_KEY_IS_AUTHORIZED"),
		IgnoreNewKeysAreValid:      flag("IGNORE_ASSERTION_NEW_KEYS_ARE_VALID"),
		IgnoreDocumentStateIsValid: flag("IGNORE_ASSERTION_DOCUMENT_STATE_IS_VALID"),
		IgnoreHashChainIsValid:     flag("IGNORE_ASSERTION_HASH_CHAIN_IS_VALID"),
		IgnoreSCIDIsFromHash:       flag("IGNORE_ASSERTION_SCID_IS_FROM_HASH"),
		IgnoreWitnessIsAuthorized:  flag("IGNORE_WITNESS_IS_AUTHORIZED"),
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create a new did:webvh log in --out, generating a fresh Ed25519 key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Required: true, Usage: "host-and-path segment, e.g. example.com"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "directory to write did.jsonl into"},
			&cli.BoolFlag{Name: "portable", Usage: "allow the document to move host later"},
		},
		Action: func(cctx *cli.Context) error {
			pub, priv, err := webvhcrypto.GenerateEd25519Key()
			if err != nil {
				return err
			}
			mb := webvhcrypto.EncodePublicKeyMultibase(pub)
			signer := webvhcrypto.NewEd25519Signer(priv, "did:key:"+mb)

			did, _, meta, log, err := webvhlog.Create(context.Background(), webvhlog.CreateOptions{
				HostAndPath: cctx.String("domain"),
				VMs:         []webvhdoc.VerificationMethod{{Type: "Multikey", PublicKeyMultibase: mb}},
				UpdateKeys:  []string{mb},
				Portable:    cctx.Bool("portable"),
				Signer:      signer,
				Verifier:    webvhcrypto.Ed25519Verifier{},
				Now:         time.Now(),
			})
			if err != nil {
				return err
			}

			store, err := webvhhost.NewFileLogStore(cctx.String("out"))
			if err != nil {
				return err
			}
			if err := store.WriteLog(log); err != nil {
				return err
			}

			slog.Info("created did:webvh document", "did", did, "versionId", meta.VersionID)
			fmt.Println(did)
			return nil
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "append a new entry rotating to a freshly generated key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-dir", Required: true, Usage: "directory containing did.jsonl"},
		},
		Action: func(cctx *cli.Context) error {
			store, err := webvhhost.NewFileLogStore(cctx.String("log-dir"))
			if err != nil {
				return err
			}
			log, err := store.ReadLog()
			if err != nil {
				return err
			}
			if len(log) == 0 {
				return fmt.Errorf("webvhctl: log is empty")
			}

			pub, priv, err := webvhcrypto.GenerateEd25519Key()
			if err != nil {
				return err
			}
			mb := webvhcrypto.EncodePublicKeyMultibase(pub)
			signer := webvhcrypto.NewEd25519Signer(priv, "did:key:"+mb)

			did, _, meta, newLog, err := webvhlog.Update(context.Background(), log, webvhlog.UpdateOptions{
				VMs:        []webvhdoc.VerificationMethod{{Type: "Multikey", PublicKeyMultibase: mb}},
				UpdateKeys: []string{mb},
				Signer:     signer,
				Verifier:   webvhcrypto.Ed25519Verifier{},
				Now:        time.Now(),
			})
			if err != nil {
				return err
			}

			if err := store.WriteLog(newLog); err != nil {
				return err
			}
			slog.Info("updated did:webvh document", "did", did, "versionId", meta.VersionID)
			return nil
		},
	}
}

func deactivateCommand() *cli.Command {
	return &cli.Command{
		Name:  "deactivate",
		Usage: "append a terminal deactivation entry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-dir", Required: true, Usage: "directory containing did.jsonl"},
			&cli.StringFlag{Name: "signer-key", Required: true, Usage: "secretKeyMultibase of the key authorized to sign this entry"},
		},
		Action: func(cctx *cli.Context) error {
			store, err := webvhhost.NewFileLogStore(cctx.String("log-dir"))
			if err != nil {
				return err
			}
			log, err := store.ReadLog()
			if err != nil {
				return err
			}

			priv, err := webvhcrypto.DecodeSecretKeyMultibase(cctx.String("signer-key"))
			if err != nil {
				return err
			}
			signer := webvhcrypto.NewEd25519Signer(priv, "did:key:"+webvhcrypto.EncodePublicKeyMultibase(priv.Public().(ed25519.PublicKey)))

			did, _, meta, newLog, err := webvhlog.Deactivate(context.Background(), log, webvhlog.DeactivateOptions{
				Signer:   signer,
				Verifier: webvhcrypto.Ed25519Verifier{},
				Now:      time.Now(),
			})
			if err != nil {
				return err
			}

			if err := store.WriteLog(newLog); err != nil {
				return err
			}
			slog.Info("deactivated did:webvh document", "did", did, "versionId", meta.VersionID)
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "resolve a did:webvh log, printing the resulting document as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-dir", Required: true, Usage: "directory containing did.jsonl"},
		},
		Action: func(cctx *cli.Context) error {
			store, err := webvhhost.NewFileLogStore(cctx.String("log-dir"))
			if err != nil {
				return err
			}
			log, err := store.ReadLog()
			if err != nil {
				return err
			}
			witnessProofs, err := store.ReadWitnessProofs()
			if err != nil {
				return err
			}

			result, err := webvhlog.Resolve(context.Background(), log, webvhlog.Options{
				Verifier:     webvhcrypto.Ed25519Verifier{},
				WitnessProof: witnessProofs,
				Policy:       policyFromEnv(),
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result.Document, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
