// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin/params"
)

// paramsReader reads governance params, falling back to the initial
// defaults for keys never set.
type paramsReader struct {
	*params.Params
}

func (p *paramsReader) getOrDefault(key attesta.Bytes32, def *big.Int) (*big.Int, error) {
	v, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return def, nil
	}
	return v, nil
}

func (p *paramsReader) stakeAmount() (*big.Int, error) {
	return p.getOrDefault(attesta.KeyStakeAmount, attesta.InitialStakeAmount)
}

func (p *paramsReader) unstakeDelay() (uint64, error) {
	v, err := p.getOrDefault(attesta.KeyUnstakeDelay, attesta.InitialUnstakeDelay)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (p *paramsReader) minTaskTimeout() (uint64, error) {
	v, err := p.getOrDefault(attesta.KeyMinTaskTimeout, attesta.InitialMinTaskTimeout)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (p *paramsReader) maxRewardAmount() (*big.Int, error) {
	return p.getOrDefault(attesta.KeyMaxRewardAmount, attesta.InitialMaxRewardAmount)
}

func (p *paramsReader) rewardToken() (attesta.Address, error) {
	v, err := p.Get(attesta.KeyRewardToken)
	if err != nil {
		return attesta.Address{}, err
	}
	return attesta.BytesToAddress(v.Bytes()), nil
}

func (p *paramsReader) rewardTokenEnabled() (bool, error) {
	v, err := p.Get(attesta.KeyRewardTokenEnabled)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

func (p *paramsReader) paused() (bool, error) {
	v, err := p.Get(attesta.KeyPaused)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}
