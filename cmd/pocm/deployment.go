// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vechain/pocm/builtin/pocm"
	"github.com/vechain/pocm/runtime"
	"github.com/vechain/pocm/thor"
)

// Account is a funded base-asset account, balance in coins.
type Account struct {
	Address thor.Address    `yaml:"address"`
	Balance decimal.Decimal `yaml:"balance"`
}

// DeploymentFile is the on-disk description of a deployment.
type DeploymentFile struct {
	// Address of the contract, derived from the symbol when absent.
	Address  *thor.Address `yaml:"address,omitempty"`
	GasLimit uint64        `yaml:"gasLimit,omitempty"`

	pocm.Params `yaml:",inline"`

	Accounts []Account `yaml:"accounts,omitempty"`
}

func parseDeployment(r io.Reader) (*runtime.Deployment, error) {
	var file DeploymentFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode deployment file")
	}

	cfg, err := file.Params.Config()
	if err != nil {
		return nil, err
	}

	dep := &runtime.Deployment{
		Config:   cfg,
		Alloc:    make(map[thor.Address]*big.Int, len(file.Accounts)),
		GasLimit: file.GasLimit,
	}
	if file.Address != nil {
		dep.Address = *file.Address
	} else {
		dep.Address = thor.BytesToAddress(thor.Blake2b([]byte("pocm"), []byte(cfg.Symbol)).Bytes())
	}

	for _, acc := range file.Accounts {
		if _, ok := dep.Alloc[acc.Address]; ok {
			return nil, errors.Errorf("duplicated account %v", acc.Address)
		}
		balance, err := pocm.ToBaseUnits(acc.Balance)
		if err != nil {
			return nil, errors.WithMessagef(err, "account %v", acc.Address)
		}
		dep.Alloc[acc.Address] = balance
	}
	return dep, nil
}

func loadDeployment(path string) (*runtime.Deployment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open deployment file")
	}
	defer file.Close()
	return parseDeployment(file)
}
