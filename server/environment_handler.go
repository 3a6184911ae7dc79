package server

import (
	"net/http"
	"sort"

	"github.com/drift-labs/drift-common/environment"
	"github.com/drift-labs/drift-common/types"
)

func (s *GeoblockServer) handleEnvironmentsRequest(respw http.ResponseWriter, req *http.Request) {
	seen := make(map[environment.Env]bool)
	for env := range s.environments.Rpcs {
		seen[env] = true
	}
	for env := range s.environments.HistoryServerUrl {
		seen[env] = true
	}
	for env := range s.environments.DlobServerHttpUrl {
		seen[env] = true
	}
	for env := range s.environments.DlobServerWsUrl {
		seen[env] = true
	}

	envs := make([]string, 0, len(seen))
	for env := range seen {
		envs = append(envs, string(env))
	}
	sort.Strings(envs)
	s.writeJson(respw, http.StatusOK, envs)
}

func (s *GeoblockServer) handleEnvironmentRequest(respw http.ResponseWriter, req *http.Request) {
	env, ok := s.lookupEnv(respw, req)
	if !ok {
		return
	}

	res := types.EnvironmentResponse{Env: env, Rpcs: []environment.RpcEndpoint{}}
	found := false
	if rpcs, ok := s.environments.RpcEndpoints(env); ok {
		res.Rpcs = rpcs
		found = true
	}
	if u, ok := s.environments.HistoryServerURL(env); ok {
		res.HistoryServerUrl = u
		found = true
	}
	if u, ok := s.environments.DlobServerHTTPURL(env); ok {
		res.DlobServerHttpUrl = u
		found = true
	}
	if u, ok := s.environments.DlobServerWsURL(env); ok {
		res.DlobServerWsUrl = u
		found = true
	}
	if !found {
		s.writeError(respw, http.StatusNotFound, "environment not configured")
		return
	}
	s.writeJson(respw, http.StatusOK, res)
}

func (s *GeoblockServer) handleRpcsRequest(respw http.ResponseWriter, req *http.Request) {
	env, ok := s.lookupEnv(respw, req)
	if !ok {
		return
	}

	rpcs, ok := s.environments.RpcEndpoints(env)
	if !ok {
		s.writeError(respw, http.StatusNotFound, "no rpcs for environment")
		return
	}
	s.writeJson(respw, http.StatusOK, rpcs)
}

func (s *GeoblockServer) lookupEnv(respw http.ResponseWriter, req *http.Request) (environment.Env, bool) {
	env, err := environment.ParseEnv(req.PathValue("env"))
	if err != nil {
		s.writeError(respw, http.StatusNotFound, err.Error())
		return "", false
	}
	return env, true
}
