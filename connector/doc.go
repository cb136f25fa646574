/*
Package connector defines the wallet-connection strategies used by the exchange interface.

# Overview

A [Connector] is constructed from configuration and does no network I/O until [Connector.Activate]
is called. Activation yields an [Update]: a JSON-RPC [Caller], the chain id, and, for wallet
connectors, the selected account.

Optional capabilities are expressed as small interfaces:

  - [Authorizer] answers whether a wallet already granted access, without prompting.
  - [Detector] answers whether the provider behind the connector exists at all.
  - [EventSource] exposes chain-changed and accounts-changed subscriptions.

# Implementations

  - connector/injected: an EIP-1193 style provider, usually a desktop wallet exposing JSON-RPC on localhost.
  - connector/network: a read-only RPC endpoint per chain.
  - connector/walletconnect: a QR-code wallet paired through a WalletConnect bridge.
  - connector/walletlink: a hosted wallet reachable over JSON-RPC.

The connector/registry package builds all of them from configuration.
*/
package connector
