package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MissingRepository --dir ../domain/player --output domain/player --outpkg playermock --filename missing_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/prop --output domain/prop --outpkg propmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/rawodds --output domain/rawodds --outpkg rawoddsmock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/gamelog --output domain/gamelog --outpkg gamelogmock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name AliasRepository --dir ../domain/proptype --output domain/proptype --outpkg proptypemock --filename alias_repository_mock.go
