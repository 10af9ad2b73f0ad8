// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis loads the initial configuration and writes it into a fresh
// runtime.
package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/runtime"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/vrf"
	"github.com/vechain/stakemint/xenv"
)

var (
	logger = log.WithContext("pkg", "genesis")

	ErrAlreadyInitialized = errors.New("genesis: already initialized")
)

// Amount is a decimal or 0x-prefixed hex integer in yaml.
type Amount big.Int

func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	return (*big.Int)(a).String(), nil
}

// Int returns a copy as big.Int.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(a))
}

// Account is a pre-funded address.
type Account struct {
	Address string  `yaml:"address"`
	Balance *Amount `yaml:"balance"`
}

// Oracle configures the randomness oracle and the parameters sent with
// each request.
type Oracle struct {
	// compressed secp256k1 public key of the operator, hex encoded
	Operator         string `yaml:"operator"`
	KeyHash          string `yaml:"keyHash,omitempty"`
	CallbackGasLimit uint64 `yaml:"callbackGasLimit"`
	Confirmations    uint64 `yaml:"confirmations"`
	NumWords         uint64 `yaml:"numWords"`
}

// Config is the genesis file.
type Config struct {
	Executor       string    `yaml:"executor"`
	StakeAmount    *Amount   `yaml:"stakeAmount"`
	BurnWaitPeriod uint64    `yaml:"burnWaitPeriod"`
	BaseURI        string    `yaml:"baseURI"`
	Oracle         Oracle    `yaml:"oracle"`
	Accounts       []Account `yaml:"accounts"`
}

// LoadConfig reads a yaml genesis file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}
	return &cfg, nil
}

// DevConfig returns a configuration for local use. executor is the admin,
// and it and every account get ten stakes worth of balance.
func DevConfig(executor thor.Address, operator []byte, accounts ...thor.Address) *Config {
	cfg := &Config{
		Executor:       executor.String(),
		StakeAmount:    NewAmount(thor.InitialStakeAmount),
		BurnWaitPeriod: thor.InitialBurnWaitPeriod,
		BaseURI:        "stakemint://item/",
		Oracle: Oracle{
			Operator:         hexutil.Encode(operator),
			CallbackGasLimit: thor.InitialCallbackGasLimit,
			Confirmations:    thor.InitialRequestConfirmations,
			NumWords:         thor.InitialNumWords,
		},
	}
	balance := NewAmount(new(big.Int).Mul(thor.InitialStakeAmount, big.NewInt(10)))
	for _, addr := range append([]thor.Address{executor}, accounts...) {
		cfg.Accounts = append(cfg.Accounts, Account{Address: addr.String(), Balance: balance})
	}
	return cfg
}

type parsedConfig struct {
	executor thor.Address
	operator []byte
	keyHash  thor.Bytes32
	accounts []thor.Address
	balances map[thor.Address]*big.Int
}

func (cfg *Config) parse() (*parsedConfig, error) {
	var (
		p   = &parsedConfig{balances: make(map[thor.Address]*big.Int)}
		err error
	)
	if p.executor, err = thor.ParseAddress(cfg.Executor); err != nil {
		return nil, errors.Wrap(err, "executor")
	}
	if cfg.StakeAmount == nil || cfg.StakeAmount.Int().Sign() == 0 {
		return nil, errors.New("stakeAmount must be a positive integer")
	}
	if cfg.Oracle.NumWords == 0 {
		return nil, errors.New("oracle.numWords must not be 0")
	}
	if p.operator, err = hexutil.Decode(cfg.Oracle.Operator); err != nil {
		return nil, errors.Wrap(err, "oracle.operator")
	}
	if len(p.operator) != vrf.PublicKeyLen {
		return nil, fmt.Errorf("oracle.operator: want %d bytes compressed key, got %d", vrf.PublicKeyLen, len(p.operator))
	}
	if cfg.Oracle.KeyHash != "" {
		if p.keyHash, err = thor.ParseBytes32(cfg.Oracle.KeyHash); err != nil {
			return nil, errors.Wrap(err, "oracle.keyHash")
		}
	} else {
		p.keyHash = thor.Blake2b(p.operator)
	}
	for _, a := range cfg.Accounts {
		addr, err := thor.ParseAddress(a.Address)
		if err != nil {
			return nil, errors.Wrap(err, "account")
		}
		if a.Balance == nil {
			return nil, fmt.Errorf("%s: balance must be set", addr)
		}
		if _, ok := p.balances[addr]; ok {
			return nil, fmt.Errorf("%s: duplicated account", addr)
		}
		p.balances[addr] = a.Balance.Int()
		p.accounts = append(p.accounts, addr)
	}
	return p, nil
}

// Domain derives the signing domain of requests from the executor and the
// oracle operator, so signatures made for one deployment fail on another.
func (cfg *Config) Domain() (thor.Bytes32, error) {
	p, err := cfg.parse()
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.Blake2b([]byte("stakemint"), p.executor.Bytes(), p.operator), nil
}

// Builder converts the configuration into a genesis builder.
func (cfg *Config) Builder() (*Builder, error) {
	p, err := cfg.parse()
	if err != nil {
		return nil, err
	}
	u64 := func(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

	return new(Builder).
		State(func(env *xenv.Environment) error {
			params := env.Builtins().Params
			for _, entry := range []struct {
				key thor.Bytes32
				val *big.Int
			}{
				{thor.KeyStakeAmount, cfg.StakeAmount.Int()},
				{thor.KeyBurnWaitPeriod, u64(cfg.BurnWaitPeriod)},
				{thor.KeyVRFKeyHash, new(big.Int).SetBytes(p.keyHash.Bytes())},
				{thor.KeyCallbackGasLimit, u64(cfg.Oracle.CallbackGasLimit)},
				{thor.KeyRequestConfirmations, u64(cfg.Oracle.Confirmations)},
				{thor.KeyNumWords, u64(cfg.Oracle.NumWords)},
			} {
				if err := params.Set(entry.key, entry.val); err != nil {
					return err
				}
			}
			return params.SetAddress(thor.KeyExecutorAddress, p.executor)
		}).
		State(func(env *xenv.Environment) error {
			for _, addr := range p.accounts {
				if err := env.Builtins().Energy.AddBalance(addr, p.balances[addr]); err != nil {
					return errors.Wrap(err, addr.String())
				}
			}
			return nil
		}).
		State(func(env *xenv.Environment) error {
			set := env.Builtins()
			set.Registry.SetMinter(set.Allocator.Address())
			if err := set.Registry.SetBaseURI(cfg.BaseURI); err != nil {
				return err
			}
			if err := set.Oracle.SetOperator(p.operator); err != nil {
				return err
			}
			return set.Allocator.Initialize()
		}), nil
}

// Apply writes the configuration into rt. An already initialized runtime is
// left untouched and a nil output is returned.
func Apply(rt *runtime.Runtime, cfg *Config) (*tx.Output, error) {
	if rt.Initialized() {
		logger.Debug("genesis skipped, state exists", "seq", rt.Seq())
		return nil, nil
	}
	b, err := cfg.Builder()
	if err != nil {
		return nil, err
	}
	return b.Build(rt)
}
